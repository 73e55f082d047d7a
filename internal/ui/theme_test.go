package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames() returned %d names, want 2", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestGetTheme(t *testing.T) {
	dracula := GetTheme("Dracula")
	if dracula.Name != "Dracula" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Dracula", dracula.Name)
	}

	slate := GetTheme("Slate")
	if slate.Name != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", slate.Name)
	}

	unknown := GetTheme("Unknown")
	if unknown.Name != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", unknown.Name)
	}
}

func TestSeverityColorsCoverWireClasses(t *testing.T) {
	classes := []string{
		"DIAGNOSTIC", "ACTIVITY_LO", "ACTIVITY_HI", "COMMAND",
		"WARNING_LO", "WARNING_HI", "FATAL",
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, class := range classes {
			if th.SeverityColors[class] == "" {
				t.Fatalf("theme %s missing color for %s", name, class)
			}
		}
	}
}

func TestSeverityStyleFallsBackToMuted(t *testing.T) {
	styles := GetTheme("Dracula").Styles()
	known := styles.SeverityStyle("FATAL")
	unknown := styles.SeverityStyle("NO_SUCH_CLASS")
	if known.GetForeground() == unknown.GetForeground() {
		t.Fatalf("unknown severity should use the muted fallback, got %v", unknown.GetForeground())
	}
}
