package term

import (
	"fmt"
	"sort"
	"strings"
)

// logSize is the scrollback capacity in lines.
const logSize = 100

// Command is one console command. Run receives the already-split
// arguments, without the command name. Suggest, when set, returns
// candidate values for the argument currently being typed; the console
// prefix-filters them for the ghost hint and Tab cycling.
type Command struct {
	Name    string
	Usage   string
	Help    string
	Run     func(c *Console, args []string) error
	Suggest func(partial string) []string
}

// Console ties the edit buffer, history, scrollback and command
// registry together. Lookup is case-insensitive; completion is by
// prefix with Tab cycling.
type Console struct {
	Input   *EditBuffer
	history *History

	commands map[string]*Command
	names    []string // sorted canonical names

	log []string

	// completion state, reset on any edit
	matches  []string
	matchIdx int
}

func NewConsole() *Console {
	c := &Console{
		Input:    NewEditBuffer(),
		history:  NewHistory(),
		commands: map[string]*Command{},
	}
	c.registerBuiltins()
	return c
}

// Register adds a command. Re-registering a name replaces it.
func (c *Console) Register(cmd *Command) {
	if cmd == nil || cmd.Name == "" || cmd.Run == nil {
		return
	}
	key := strings.ToLower(cmd.Name)
	if _, exists := c.commands[key]; !exists {
		c.names = append(c.names, key)
		sort.Strings(c.names)
	}
	c.commands[key] = cmd
}

// Printf appends a formatted line to the scrollback.
func (c *Console) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if len(c.log) == logSize {
		c.log = c.log[1:]
	}
	c.log = append(c.log, line)
}

// Log returns the scrollback lines, oldest first.
func (c *Console) Log() []string {
	return c.log
}

// Submit executes the current input line and clears it.
func (c *Console) Submit() {
	line := strings.TrimSpace(c.Input.Text())
	c.Input.Clear()
	c.resetCompletion()
	if line == "" {
		return
	}
	c.history.Push(line)
	c.Printf("> %s", line)
	if err := c.Execute(line); err != nil {
		c.Printf("error: %v", err)
	}
}

// Execute runs one command line.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := c.commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return cmd.Run(c, fields[1:])
}

// HistoryPrev replaces the input with the previous history entry.
func (c *Console) HistoryPrev() {
	if line, ok := c.history.Prev(c.Input.Text()); ok {
		c.Input.SetText(line)
		c.resetCompletion()
	}
}

// HistoryNext replaces the input with the next history entry or the
// stashed draft.
func (c *Console) HistoryNext() {
	if line, ok := c.history.Next(); ok {
		c.Input.SetText(line)
		c.resetCompletion()
	}
}

// Ghost returns the completion hint drawn after the cursor: the
// remainder of the first prefix match, or "". Before the first space
// the command word is completed; after it, the command's argument
// suggester is consulted.
func (c *Console) Ghost() string {
	if strings.ContainsAny(c.Input.Text(), " ") {
		cmd, _, partial := c.argContext()
		if cmd == nil || cmd.Suggest == nil || partial == "" {
			return ""
		}
		lower := strings.ToLower(partial)
		for _, s := range cmd.Suggest(partial) {
			if strings.HasPrefix(strings.ToLower(s), lower) && len(s) > len(partial) {
				return s[len(partial):]
			}
		}
		return ""
	}
	word := c.commandWord()
	if word == "" {
		return ""
	}
	for _, name := range c.names {
		if strings.HasPrefix(name, strings.ToLower(word)) && len(name) > len(word) {
			return name[len(word):]
		}
	}
	return ""
}

// Complete cycles through the prefix matches, replacing the input with
// the next match per press. Past the command word it cycles the
// command's argument suggestions instead, rewriting only the argument
// being typed.
func (c *Console) Complete() {
	if len(c.matches) == 0 {
		if strings.ContainsAny(c.Input.Text(), " ") {
			cmd, head, partial := c.argContext()
			if cmd == nil || cmd.Suggest == nil {
				return
			}
			lower := strings.ToLower(partial)
			for _, s := range cmd.Suggest(partial) {
				if strings.HasPrefix(strings.ToLower(s), lower) {
					c.matches = append(c.matches, head+s)
				}
			}
		} else {
			word := strings.ToLower(c.commandWord())
			if word == "" {
				return
			}
			for _, name := range c.names {
				if strings.HasPrefix(name, word) {
					c.matches = append(c.matches, name)
				}
			}
		}
		c.matchIdx = 0
	}
	if len(c.matches) == 0 {
		return
	}
	c.Input.SetText(c.matches[c.matchIdx])
	c.matchIdx = (c.matchIdx + 1) % len(c.matches)
}

// Type inserts text at the cursor and invalidates completion state.
func (c *Console) Type(s string) {
	c.Input.Insert(s)
	c.resetCompletion()
}

func (c *Console) resetCompletion() {
	c.matches = nil
	c.matchIdx = 0
}

// argContext resolves the registered command named by the input's first
// word plus the argument fragment after the last space. nil command
// means the input has no space or names no known command.
func (c *Console) argContext() (*Command, string, string) {
	text := c.Input.Text()
	idx := strings.Index(text, " ")
	if idx < 0 {
		return nil, "", ""
	}
	cmd, ok := c.commands[strings.ToLower(text[:idx])]
	if !ok {
		return nil, "", ""
	}
	cut := strings.LastIndex(text, " ") + 1
	return cmd, text[:cut], text[cut:]
}

// commandWord is the first whitespace-delimited word of the input.
func (c *Console) commandWord() string {
	fields := strings.Fields(c.Input.Text())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (c *Console) registerBuiltins() {
	c.Register(&Command{
		Name:  "help",
		Usage: "help [command]",
		Help:  "list commands, or show one command's usage",
		Run: func(c *Console, args []string) error {
			if len(args) > 0 {
				cmd, ok := c.commands[strings.ToLower(args[0])]
				if !ok {
					return fmt.Errorf("unknown command %q", args[0])
				}
				c.Printf("%s - %s", cmd.Usage, cmd.Help)
				return nil
			}
			for _, name := range c.names {
				c.Printf("%-18s %s", name, c.commands[name].Help)
			}
			return nil
		},
	})
	c.Register(&Command{
		Name:  "clear",
		Usage: "clear",
		Help:  "clear the scrollback",
		Run: func(c *Console, args []string) error {
			c.log = nil
			return nil
		},
	})
	c.Register(&Command{
		Name:  "echo",
		Usage: "echo [text...]",
		Help:  "print the arguments",
		Run: func(c *Console, args []string) error {
			c.Printf("%s", strings.Join(args, " "))
			return nil
		},
	})
}
