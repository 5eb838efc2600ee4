package hotkey

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"f9", "f9", true},
		{"F12", "f12", true},
		{"Space", "space", true},
		{"ESCAPE", "esc", true},
		{"return", "enter", true},
		{"ctrl_l", "ctrl_l", true},
		{"CTRL", "ctrl", true},
		{"m", "m", true},
		{"X", "x", true},
		{"  f9  ", "f9", true},
		{"", "", false},
		{"not_a_key", "", false},
		{"f25", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKey(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseKey(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePTTKeyFallback(t *testing.T) {
	key, ok := ParsePTTKey("definitely_not_a_key")
	if ok {
		t.Error("expected failure report for unrecognized key")
	}
	if key != DefaultPTTKey {
		t.Errorf("fallback key = %q, want %q", key, DefaultPTTKey)
	}

	key, ok = ParsePTTKey("F12")
	if !ok || key != "f12" {
		t.Errorf("ParsePTTKey(F12) = (%q, %v), want (f12, true)", key, ok)
	}
}

func TestKeyRole(t *testing.T) {
	tests := []struct {
		key  Key
		role string
	}{
		{"ctrl_l", RoleCtrl},
		{"ctrl_r", RoleCtrl},
		{"ctrl", RoleCtrl},
		{"alt_r", RoleAlt},
		{"shift_l", RoleShift},
		{"cmd", RoleSuper},
		{"m", ""},
		{"f9", ""},
	}

	for _, tt := range tests {
		if got := tt.key.Role(); got != tt.role {
			t.Errorf("Key(%q).Role() = %q, want %q", tt.key, got, tt.role)
		}
	}
}

func TestParseCombo(t *testing.T) {
	combo := ParseCombo([]string{"Ctrl", "ALT", "m"})
	want := []Key{"ctrl", "alt", "m"}
	if len(combo) != len(want) {
		t.Fatalf("combo has %d keys, want %d", len(combo), len(want))
	}
	for i := range want {
		if combo[i] != want[i] {
			t.Errorf("combo[%d] = %q, want %q", i, combo[i], want[i])
		}
	}
}

func TestParseComboDropsUnknown(t *testing.T) {
	combo := ParseCombo([]string{"ctrl", "bogus_key", "m"})
	if len(combo) != 2 {
		t.Errorf("combo has %d keys, want 2 after dropping unknown", len(combo))
	}
}
