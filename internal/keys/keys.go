// Package keys resolves user-facing key names to terminal key identifiers.
package keys

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default is the parry key used when none is configured.
const Default = "f"

// Reserved keys are bound to application actions.
var Reserved = map[string]string{
	"ctrl+c": "quit",
	"esc":    "hide window",
}

var named = map[string]string{
	"space":     " ",
	"spacebar":  " ",
	"enter":     "enter",
	"return":    "enter",
	"tab":       "tab",
	"backspace": "backspace",
	"delete":    "delete",
	"insert":    "insert",
	"home":      "home",
	"end":       "end",
	"pgup":      "pgup",
	"pageup":    "pgup",
	"pgdown":    "pgdown",
	"pagedown":  "pgdown",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"esc":       "esc",
	"escape":    "esc",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("f%d", i)
		named[name] = name
	}
}

// UnknownKeyError reports a parry key name that cannot be bound.
type UnknownKeyError struct {
	Name     string
	Reserved string
}

func (e *UnknownKeyError) Error() string {
	if e.Reserved != "" {
		return fmt.Sprintf("key %q is reserved for %s", e.Name, e.Reserved)
	}
	return fmt.Sprintf("unknown key name: %q", e.Name)
}

// Resolve maps a key name to the identifier reported by terminal key events.
// Single printable characters map to themselves; named keys are case-insensitive.
func Resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &UnknownKeyError{Name: name}
	}
	var id string
	if utf8.RuneCountInString(trimmed) == 1 {
		r, _ := utf8.DecodeRuneInString(trimmed)
		if !unicode.IsPrint(r) {
			return "", &UnknownKeyError{Name: name}
		}
		id = trimmed
	} else {
		lower := strings.ToLower(trimmed)
		mapped, ok := named[lower]
		if !ok {
			mapped, ok = resolveCtrl(lower)
		}
		if !ok {
			return "", &UnknownKeyError{Name: name}
		}
		id = mapped
	}
	if action, ok := Reserved[id]; ok {
		return "", &UnknownKeyError{Name: name, Reserved: action}
	}
	return id, nil
}

// ctrlAliases maps control combinations to the name the terminal reports
// for the same byte.
var ctrlAliases = map[string]string{
	"ctrl+i": "tab",
	"ctrl+m": "enter",
	"ctrl+[": "esc",
}

// resolveCtrl accepts ctrl+<letter> and the ctrl+ punctuation combinations
// that produce a distinct control byte.
func resolveCtrl(name string) (string, bool) {
	if alias, ok := ctrlAliases[name]; ok {
		return alias, true
	}
	rest, ok := strings.CutPrefix(name, "ctrl+")
	if !ok || len(rest) != 1 {
		return "", false
	}
	c := rest[0]
	if (c >= 'a' && c <= 'z') || strings.IndexByte(`@\]^_`, c) >= 0 {
		return name, true
	}
	return "", false
}

// ResolveOr resolves name, returning fallback alongside the error when name is not usable.
func ResolveOr(name, fallback string) (string, error) {
	id, err := Resolve(name)
	if err != nil {
		return fallback, err
	}
	return id, nil
}

// Display returns a human-readable name for a key identifier.
func Display(id string) string {
	if id == " " {
		return "space"
	}
	return id
}

// Names lists the recognized multi-character key names.
func Names() []string {
	out := make([]string, 0, len(named))
	for name, id := range named {
		if _, reserved := Reserved[id]; reserved {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
