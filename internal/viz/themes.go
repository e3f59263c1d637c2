package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the header of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Muted   lipgloss.Color
}

var (
	Themes = []Theme{
		{Name: "cyberpunk", Primary: lipgloss.Color("#ff00ff"), Muted: lipgloss.Color("#666666")},
		{Name: "retro", Primary: lipgloss.Color("#00ff00"), Muted: lipgloss.Color("#005500")},
		{Name: "minimal", Primary: lipgloss.Color("#ffffff"), Muted: lipgloss.Color("#888888")},
		{Name: "ocean", Primary: lipgloss.Color("#0077be"), Muted: lipgloss.Color("#4488aa")},
		{Name: "sunset", Primary: lipgloss.Color("#ff6b6b"), Muted: lipgloss.Color("#8b6b8c")},
	}

	CurrentTheme = Themes[0]
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
