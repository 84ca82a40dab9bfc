package preview

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	DangerColor    = lipgloss.Color("#F25D94")
	Gray           = lipgloss.Color("#8B8B8B")
	LightGray      = lipgloss.Color("#D9D9D9")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray).
			Padding(0, 1)

	InfoPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Foreground(LightGray).
			Padding(0, 1).
			Width(40)

	WarningStyle = lipgloss.NewStyle().
			Foreground(DangerColor).
			Bold(true)
)

// heightRamp maps normalized column height to a glyph, lowest first.
var heightRamp = []rune(" .:-=+*#%@")

// NonFiniteSymbol marks columns whose height is NaN or infinite.
const NonFiniteSymbol = '?'
