package ui

import (
	"testing"

	"github.com/five82/erpdesk/internal/notice"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 || names[0] != "Dracula" {
		t.Fatalf("ThemeNames() = %v, want Dracula first of 3", names)
	}
	names[0] = "mutated"
	if ThemeNames()[0] != "Dracula" {
		t.Fatalf("ThemeNames should return a copy")
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Dracula":  "Nightfox",
		"Nightfox": "Slate",
		"Slate":    "Dracula",
		"Unknown":  "Dracula",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", got)
	}
}

func TestLevelStyle(t *testing.T) {
	s := GetTheme("Dracula").Styles()
	if s.LevelStyle(notice.LevelError).GetForeground() != s.DangerText.GetForeground() {
		t.Fatalf("error notices should use the danger color")
	}
	if s.LevelStyle(notice.LevelInfo).GetForeground() != s.InfoText.GetForeground() {
		t.Fatalf("info notices should use the info color")
	}
}

func TestFitAndTruncate(t *testing.T) {
	if got := truncate("  General ledger  ", 7); got != "Gene..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := fit("42", 5, true); got != "   42" {
		t.Fatalf("fit right = %q", got)
	}
	if got := fit("ab", 4, false); got != "ab  " {
		t.Fatalf("fit left = %q", got)
	}
	if got := clamp(9, 0, 3); got != 3 {
		t.Fatalf("clamp = %d", got)
	}
	if got := clamp(2, 0, -1); got != 0 {
		t.Fatalf("clamp with empty range = %d", got)
	}
}
