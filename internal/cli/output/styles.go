package output

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles used for terminal text output.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	TableName     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// Colors.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"}
)

// DefaultStyles returns the colored terminal styles.
func DefaultStyles() *Styles {
	return &Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Underline(true),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(colorMuted),
		Success:       lipgloss.NewStyle().Foreground(colorSuccess),
		Warning:       lipgloss.NewStyle().Foreground(colorWarning),
		Error:         lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Info:          lipgloss.NewStyle().Foreground(colorInfo),
		TableName:     lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
		StatusSuccess: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		StatusFailed:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1:       plain,
		Header2:       plain,
		Bold:          plain,
		Muted:         plain,
		Success:       plain,
		Warning:       plain,
		Error:         plain,
		Info:          plain,
		TableName:     plain,
		StatusSuccess: plain,
		StatusFailed:  plain,
	}
}
