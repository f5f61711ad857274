package render

import "testing"

func TestThemeByNameFallsBack(t *testing.T) {
	if got := ThemeByName("nope"); got.Name != "aquarium" {
		t.Errorf("expected fallback to aquarium, got %q", got.Name)
	}
	if got := ThemeByName("midnight"); got.Name != "midnight" {
		t.Errorf("expected midnight, got %q", got.Name)
	}
}

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	cur := names[0]
	seen := map[string]bool{cur: true}
	for i := 0; i < len(names)-1; i++ {
		cur = NextTheme(cur).Name
		if seen[cur] {
			t.Fatalf("theme %q repeated before full cycle", cur)
		}
		seen[cur] = true
	}
	if NextTheme(cur).Name != names[0] {
		t.Error("expected cycle to wrap back to the first theme")
	}
}
