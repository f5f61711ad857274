package render

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme is the palette the compositor draws the tank with. Entities keep
// their genome colors; themes only restyle the environment.
type Theme struct {
	Name string

	WaterTop    rl.Color
	WaterBottom rl.Color
	RayColor    rl.Color
	MoteColor   rl.Color
	SandColor   rl.Color
	TextColor   rl.Color
}

var themes = []Theme{
	{
		Name:        "aquarium",
		WaterTop:    rl.Color{R: 40, G: 110, B: 160, A: 255},
		WaterBottom: rl.Color{R: 10, G: 40, B: 80, A: 255},
		RayColor:    rl.Color{R: 220, G: 240, B: 255, A: 28},
		MoteColor:   rl.Color{R: 200, G: 220, B: 230, A: 60},
		SandColor:   rl.Color{R: 194, G: 178, B: 128, A: 255},
		TextColor:   rl.Color{R: 230, G: 240, B: 245, A: 255},
	},
	{
		Name:        "midnight",
		WaterTop:    rl.Color{R: 12, G: 24, B: 48, A: 255},
		WaterBottom: rl.Color{R: 2, G: 6, B: 18, A: 255},
		RayColor:    rl.Color{R: 140, G: 180, B: 255, A: 18},
		MoteColor:   rl.Color{R: 120, G: 150, B: 200, A: 45},
		SandColor:   rl.Color{R: 60, G: 58, B: 70, A: 255},
		TextColor:   rl.Color{R: 180, G: 200, B: 230, A: 255},
	},
	{
		Name:        "lagoon",
		WaterTop:    rl.Color{R: 40, G: 160, B: 140, A: 255},
		WaterBottom: rl.Color{R: 8, G: 70, B: 75, A: 255},
		RayColor:    rl.Color{R: 230, G: 255, B: 240, A: 32},
		MoteColor:   rl.Color{R: 190, G: 230, B: 215, A: 55},
		SandColor:   rl.Color{R: 220, G: 205, B: 160, A: 255},
		TextColor:   rl.Color{R: 235, G: 250, B: 245, A: 255},
	},
}

// ThemeByName returns the named theme, falling back to the first theme for
// unknown names.
func ThemeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme cycles to the theme after the named one.
func NextTheme(name string) Theme {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// ThemeNames lists available themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
