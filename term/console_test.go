package term

import (
	"strings"
	"testing"
)

func TestExecuteDispatch(t *testing.T) {
	c := NewConsole()
	var got []string
	c.Register(&Command{
		Name: "probe",
		Help: "test probe",
		Run: func(c *Console, args []string) error {
			got = args
			return nil
		},
	})

	if err := c.Execute("probe one two"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("args = %v", got)
	}

	// Lookup is case-insensitive.
	if err := c.Execute("PROBE x"); err != nil {
		t.Fatalf("uppercase execute: %v", err)
	}
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("uppercase args = %v", got)
	}

	if err := c.Execute("nonsense"); err == nil {
		t.Fatalf("unknown command did not error")
	}
}

func TestSubmitLogsAndClears(t *testing.T) {
	c := NewConsole()
	c.Type("echo hello there")
	c.Submit()

	if c.Input.Text() != "" {
		t.Fatalf("input not cleared: %q", c.Input.Text())
	}
	log := c.Log()
	if len(log) != 2 {
		t.Fatalf("log = %v", log)
	}
	if log[0] != "> echo hello there" || log[1] != "hello there" {
		t.Fatalf("log = %v", log)
	}

	// Submitted lines land in history.
	c.HistoryPrev()
	if c.Input.Text() != "echo hello there" {
		t.Fatalf("history recall = %q", c.Input.Text())
	}
}

func TestSubmitReportsErrors(t *testing.T) {
	c := NewConsole()
	c.Type("bogus_cmd")
	c.Submit()
	log := c.Log()
	if len(log) != 2 || !strings.HasPrefix(log[1], "error: ") {
		t.Fatalf("log = %v", log)
	}
}

func TestLogCapacity(t *testing.T) {
	c := NewConsole()
	for i := 0; i < logSize+20; i++ {
		c.Printf("line %d", i)
	}
	log := c.Log()
	if len(log) != logSize {
		t.Fatalf("log len = %d, want %d", len(log), logSize)
	}
	if log[0] != "line 20" {
		t.Fatalf("oldest line = %q", log[0])
	}
}

func TestClearBuiltin(t *testing.T) {
	c := NewConsole()
	c.Printf("junk")
	if err := c.Execute("clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(c.Log()) != 0 {
		t.Fatalf("log not cleared: %v", c.Log())
	}
}

func TestGhostSuggestion(t *testing.T) {
	c := NewConsole()
	c.Type("he")
	if c.Ghost() != "lp" {
		t.Fatalf("ghost = %q, want lp", c.Ghost())
	}

	// help has no argument suggester, so the hint stops at the space.
	c.Type("lp ")
	if c.Ghost() != "" {
		t.Fatalf("ghost with args = %q", c.Ghost())
	}

	c.Input.Clear()
	c.Type("zz")
	if c.Ghost() != "" {
		t.Fatalf("ghost for no match = %q", c.Ghost())
	}
}

func TestTabCycling(t *testing.T) {
	c := NewConsole()
	c.Register(&Command{Name: "spawn_a", Help: "a", Run: func(*Console, []string) error { return nil }})
	c.Register(&Command{Name: "spawn_b", Help: "b", Run: func(*Console, []string) error { return nil }})

	c.Type("spa")
	c.Complete()
	if c.Input.Text() != "spawn_a" {
		t.Fatalf("first tab = %q", c.Input.Text())
	}
	c.Complete()
	if c.Input.Text() != "spawn_b" {
		t.Fatalf("second tab = %q", c.Input.Text())
	}
	c.Complete()
	if c.Input.Text() != "spawn_a" {
		t.Fatalf("tab wrap = %q", c.Input.Text())
	}

	// Typing restarts the match set.
	c.Type("x")
	c.Complete()
	if c.Input.Text() != "spawn_ax" {
		t.Fatalf("text after no-match tab = %q", c.Input.Text())
	}
}

func TestArgumentGhost(t *testing.T) {
	c := NewConsole()
	c.Register(&Command{
		Name: "summon",
		Help: "s",
		Run:  func(*Console, []string) error { return nil },
		Suggest: func(string) []string {
			return []string{"pit_boss", "the_accountant"}
		},
	})

	c.Type("summon pit")
	if c.Ghost() != "_boss" {
		t.Fatalf("argument ghost = %q, want _boss", c.Ghost())
	}

	// An empty fragment draws no hint.
	c.Input.Clear()
	c.Type("summon ")
	if c.Ghost() != "" {
		t.Fatalf("ghost for empty fragment = %q", c.Ghost())
	}

	c.Input.Clear()
	c.Type("summon zz")
	if c.Ghost() != "" {
		t.Fatalf("ghost for no match = %q", c.Ghost())
	}
}

func TestArgumentTabCycling(t *testing.T) {
	c := NewConsole()
	c.Register(&Command{
		Name: "summon",
		Help: "s",
		Run:  func(*Console, []string) error { return nil },
		Suggest: func(string) []string {
			return []string{"pit_boss", "pit_fiend", "the_accountant"}
		},
	})

	c.Type("summon pit")
	c.Complete()
	if c.Input.Text() != "summon pit_boss" {
		t.Fatalf("first tab = %q", c.Input.Text())
	}
	c.Complete()
	if c.Input.Text() != "summon pit_fiend" {
		t.Fatalf("second tab = %q", c.Input.Text())
	}
	c.Complete()
	if c.Input.Text() != "summon pit_boss" {
		t.Fatalf("tab wrap = %q", c.Input.Text())
	}

	// An empty fragment cycles the full candidate set.
	c.Input.Clear()
	c.Type("summon ")
	c.Complete()
	if c.Input.Text() != "summon pit_boss" {
		t.Fatalf("tab on empty fragment = %q", c.Input.Text())
	}

	// Later arguments complete independently of earlier ones.
	c.Input.Clear()
	c.Type("summon pit_boss the")
	c.Complete()
	if c.Input.Text() != "summon pit_boss the_accountant" {
		t.Fatalf("second argument tab = %q", c.Input.Text())
	}
}

func TestHelpListsRegistered(t *testing.T) {
	c := NewConsole()
	c.Register(&Command{Name: "zig", Usage: "zig", Help: "does zig", Run: func(*Console, []string) error { return nil }})
	if err := c.Execute("help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	joined := strings.Join(c.Log(), "\n")
	for _, want := range []string{"help", "clear", "echo", "zig"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("help output missing %q:\n%s", want, joined)
		}
	}

	c.log = nil
	if err := c.Execute("help zig"); err != nil {
		t.Fatalf("help zig: %v", err)
	}
	if len(c.Log()) != 1 || !strings.Contains(c.Log()[0], "does zig") {
		t.Fatalf("help zig output = %v", c.Log())
	}
}
