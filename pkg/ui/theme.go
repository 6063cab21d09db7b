package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile is the color profile of stdout, detected once.
var TermProfile = colorprofile.Detect(os.Stdout, os.Environ())

// ThemeFg returns hex on 256-color terminals and plain white below.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
	ColorCursor  = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}
)

// Theme holds the styles the browser renders with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Base     lipgloss.Style
	Cursor   lipgloss.Style
	Header   lipgloss.Style
	Group    lipgloss.Style
	Child    lipgloss.Style
	Disabled lipgloss.Style
	Marker   lipgloss.Style // selection mark
	Title    lipgloss.Style // top bar
	Status   lipgloss.Style
	Banner   lipgloss.Style // pending undo
	Error    lipgloss.Style
	Detail   lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{Renderer: r}
	t.Base = r.NewStyle().Foreground(ColorText)
	t.Cursor = r.NewStyle().
		Background(ColorCursor).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		Bold(true)
	t.Header = r.NewStyle().
		Background(ColorPrimary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Group = r.NewStyle().Foreground(ColorInfo).Bold(true)
	t.Child = r.NewStyle().Foreground(ColorText)
	t.Disabled = r.NewStyle().Foreground(ColorMuted).Strikethrough(true)
	t.Marker = r.NewStyle().Foreground(ColorSuccess).Bold(true)
	t.Title = r.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Status = r.NewStyle().Foreground(ColorMuted)
	t.Banner = r.NewStyle().Foreground(ThemeFg("#282A36")).Background(ColorWarning).Padding(0, 1)
	t.Error = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.Detail = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	return t
}

// TestTheme returns a theme rendering to w, for tests.
func TestTheme(w io.Writer) Theme {
	return DefaultTheme(lipgloss.NewRenderer(w))
}
