// Package duf parses the DUF text format used for game data files
// (affixes, trinkets, enemies, events).
//
// A file is a sequence of named top-level objects:
//
//	# comment
//	@iron_grip
//	name: "Iron Grip"
//	min_value: 1
//	max_value: 5
//	weight: 100
//	choices {
//	    choice {
//	        text: "Take the deal"
//	        chips_delta: 20
//	    }
//	}
//
// Values are quoted strings, integers, or nested tables. Keys inside one
// table must be unique except for repeated nested tables, which are kept
// in order and retrievable via Items.
package duf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Kind byte

const (
	KindString Kind = iota
	KindInt
	KindTable
)

// Value is one node of a parsed DUF tree.
type Value struct {
	Kind Kind
	Key  string

	Str   string
	Int   int
	items []*Value // table members, in file order
}

// Get returns the first child with the key.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil {
		return nil, false
	}
	for _, item := range v.items {
		if item.Key == key {
			return item, true
		}
	}
	return nil, false
}

// Items returns every child with the key, in file order. With an empty
// key it returns all children.
func (v *Value) Items(key string) []*Value {
	if v == nil {
		return nil
	}
	var out []*Value
	for _, item := range v.items {
		if key == "" || item.Key == key {
			out = append(out, item)
		}
	}
	return out
}

// Keys returns the child keys in file order, without duplicates.
func (v *Value) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range v.items {
		if !seen[item.Key] {
			seen[item.Key] = true
			out = append(out, item.Key)
		}
	}
	return out
}

// StringField returns the string child or an error naming the missing key.
func (v *Value) StringField(key string) (string, error) {
	item, ok := v.Get(key)
	if !ok {
		return "", fmt.Errorf("missing required key %q", key)
	}
	if item.Kind != KindString {
		return "", fmt.Errorf("key %q is not a string", key)
	}
	return item.Str, nil
}

// IntField returns the integer child or an error naming the missing key.
func (v *Value) IntField(key string) (int, error) {
	item, ok := v.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing required key %q", key)
	}
	if item.Kind != KindInt {
		return 0, fmt.Errorf("key %q is not an integer", key)
	}
	return item.Int, nil
}

// IntOr returns the integer child or the fallback when absent.
func (v *Value) IntOr(key string, fallback int) int {
	item, ok := v.Get(key)
	if !ok || item.Kind != KindInt {
		return fallback
	}
	return item.Int
}

// StringOr returns the string child or the fallback when absent.
func (v *Value) StringOr(key, fallback string) string {
	item, ok := v.Get(key)
	if !ok || item.Kind != KindString {
		return fallback
	}
	return item.Str
}

// ParseError reports a syntax error with its line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("duf: line %d: %s", e.Line, e.Msg)
}

// ParseFile parses a DUF file from disk.
func ParseFile(path string) (*Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// ParseString parses DUF source held in a string.
func ParseString(src string) (*Value, error) {
	return Parse(strings.NewReader(src))
}

// Parse reads DUF source and returns the root table. Top-level @key
// sections become children of the root.
func Parse(r io.Reader) (*Value, error) {
	root := &Value{Kind: KindTable}

	// stack[0] is the root; @key sections push onto it, braces nest further.
	stack := []*Value{root}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@"):
			if len(stack) > 2 {
				return nil, &ParseError{lineNo, "unclosed table before new section"}
			}
			key := strings.TrimSpace(line[1:])
			if key == "" {
				return nil, &ParseError{lineNo, "empty section name"}
			}
			section := &Value{Kind: KindTable, Key: key}
			root.items = append(root.items, section)
			stack = []*Value{root, section}

		case line == "}":
			if len(stack) <= 2 {
				return nil, &ParseError{lineNo, "unmatched closing brace"}
			}
			stack = stack[:len(stack)-1]

		case strings.HasSuffix(line, "{"):
			key := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			if key == "" {
				return nil, &ParseError{lineNo, "anonymous tables are not supported"}
			}
			if len(stack) < 2 {
				return nil, &ParseError{lineNo, "table outside of a section"}
			}
			table := &Value{Kind: KindTable, Key: key}
			parent := stack[len(stack)-1]
			parent.items = append(parent.items, table)
			stack = append(stack, table)

		default:
			if len(stack) < 2 {
				return nil, &ParseError{lineNo, "member outside of a section"}
			}
			item, err := parseMember(line, lineNo)
			if err != nil {
				return nil, err
			}
			parent := stack[len(stack)-1]
			parent.items = append(parent.items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(stack) > 2 {
		return nil, &ParseError{lineNo, "unclosed table at end of file"}
	}
	return root, nil
}

func parseMember(line string, lineNo int) (*Value, error) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return nil, &ParseError{lineNo, fmt.Sprintf("expected key: value, got %q", line)}
	}
	key := strings.TrimSpace(line[:colon])
	raw := strings.TrimSpace(line[colon+1:])
	if key == "" {
		return nil, &ParseError{lineNo, "empty key"}
	}
	if raw == "" {
		return nil, &ParseError{lineNo, fmt.Sprintf("key %q has no value", key)}
	}

	if strings.HasPrefix(raw, `"`) {
		if !strings.HasSuffix(raw, `"`) || len(raw) < 2 {
			return nil, &ParseError{lineNo, fmt.Sprintf("unterminated string for key %q", key)}
		}
		return &Value{Kind: KindString, Key: key, Str: raw[1 : len(raw)-1]}, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return &Value{Kind: KindInt, Key: key, Int: n}, nil
	}
	// Bare words (enum names, tag names) read as strings.
	return &Value{Kind: KindString, Key: key, Str: raw}, nil
}
