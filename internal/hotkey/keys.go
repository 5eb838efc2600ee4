// Package hotkey tracks held keys and turns raw keyboard events into
// push-to-talk and toggle-combo signals.
package hotkey

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is a normalized, lowercase key identity such as "f9", "ctrl_l",
// "space", or a single printable character like "m".
type Key string

// DefaultPTTKey is used when a configured key string is unrecognized.
const DefaultPTTKey = Key("f9")

// Modifier roles. A combo entry naming a role matches any physical
// variant of that modifier.
const (
	RoleCtrl  = "ctrl"
	RoleAlt   = "alt"
	RoleShift = "shift"
	RoleSuper = "super"
)

// keyRoles maps physical modifier variants (and bare role names) to
// their role.
var keyRoles = map[Key]string{
	"ctrl": RoleCtrl, "ctrl_l": RoleCtrl, "ctrl_r": RoleCtrl,
	"alt": RoleAlt, "alt_l": RoleAlt, "alt_r": RoleAlt,
	"shift": RoleShift, "shift_l": RoleShift, "shift_r": RoleShift,
	"super": RoleSuper, "super_l": RoleSuper, "super_r": RoleSuper,
	"cmd": RoleSuper, "win": RoleSuper,
}

// Role returns the modifier role for this key, or "" if it is not a
// modifier.
func (k Key) Role() string {
	return keyRoles[k]
}

// namedKeys are the recognized non-character key names, already
// normalized.
var namedKeys = map[string]Key{
	"space": "space", "enter": "enter", "return": "enter",
	"esc": "esc", "escape": "esc",
	"tab": "tab", "backspace": "backspace", "delete": "delete",
	"insert": "insert", "home": "home", "end": "end",
	"page_up": "page_up", "pageup": "page_up",
	"page_down": "page_down", "pagedown": "page_down",
	"up": "up", "down": "down", "left": "left", "right": "right",
	"caps_lock": "caps_lock", "capslock": "caps_lock",
}

func init() {
	fkeys := []string{
		"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
		"f13", "f14", "f15", "f16", "f17", "f18", "f19", "f20", "f21", "f22", "f23", "f24",
	}
	for _, f := range fkeys {
		namedKeys[f] = Key(f)
	}
	for variant := range keyRoles {
		namedKeys[string(variant)] = variant
	}
}

// ParseKey normalizes a case-insensitive key name. It accepts named
// keys ("F12", "Space", "ctrl_l"), modifier roles, and single
// printable characters. The boolean reports whether the string was
// recognized.
func ParseKey(s string) (Key, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if k, ok := namedKeys[s]; ok {
		return k, true
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return Key(s), true
		}
	}
	return "", false
}

// ParsePTTKey parses a push-to-talk key string, falling back to
// DefaultPTTKey for unrecognized input. The boolean reports whether
// the requested string was honored.
func ParsePTTKey(s string) (Key, bool) {
	if k, ok := ParseKey(s); ok {
		return k, true
	}
	return DefaultPTTKey, false
}

// ParseCombo parses a list of key names into a combo. Unrecognized
// entries are dropped; an empty result means no combo is configured.
func ParseCombo(names []string) []Key {
	combo := make([]Key, 0, len(names))
	for _, n := range names {
		if k, ok := ParseKey(n); ok {
			combo = append(combo, k)
		}
	}
	return combo
}
