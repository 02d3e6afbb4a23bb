package styles

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolWarning  = "⚠"
	SymbolInfo     = "●"
	SymbolArrow    = "→"
	SymbolSortAsc  = "▲"
	SymbolSortDesc = "▼"
	SymbolSkeleton = "░"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors regardless of the environment (--no-color).
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("GRID_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, no spinner, simplified output
func IsAccessible() bool {
	return os.Getenv("GRID_ACCESSIBLE") == "1" || os.Getenv("GRID_ACCESSIBLE") == "true"
}

// Base text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(Muted)
	Underline = lipgloss.NewStyle().Underline(true)
)

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Grid display
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	SortStyle     = lipgloss.NewStyle().Foreground(ColorSorted)
	GroupStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorGroup)
	SkeletonStyle = lipgloss.NewStyle().Foreground(ColorSkeleton)
	FilterStyle   = lipgloss.NewStyle().Foreground(ColorFilter)
	ControlStyle  = lipgloss.NewStyle().Foreground(ColorControl)

	// Interactive TUI
	CursorRowStyle  = lipgloss.NewStyle().Background(BgHighlight)
	CursorCellStyle = lipgloss.NewStyle().Background(Accent).Foreground(lipgloss.Color("#000000"))
	SelectedStyle   = lipgloss.NewStyle().
			Background(BgSelected).
			Foreground(TextPrimary)
	MatchStyle = lipgloss.NewStyle().Foreground(Warning)

	// Help bar
	HelpKey   = lipgloss.NewStyle().Foreground(Accent)
	HelpValue = lipgloss.NewStyle().Foreground(Muted)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// Header formats a column header, with a sort marker when sorted.
// position is the 1-based index in a multi-column sort, 0 when the column
// is the only sort.
func Header(text string, sorted, desc bool, position int) string {
	if !sorted {
		return Render(HeaderStyle, text)
	}
	marker := SymbolSortAsc
	if desc {
		marker = SymbolSortDesc
	}
	if NoColor() {
		marker = "^"
		if desc {
			marker = "v"
		}
	}
	if position > 0 {
		marker += fmt.Sprint(position)
	}
	return Render(HeaderStyle, text) + " " + Render(SortStyle, marker)
}

// Skeleton renders a loading placeholder of the given width.
func Skeleton(width int) string {
	if width <= 0 {
		return ""
	}
	symbol := SymbolSkeleton
	if NoColor() {
		symbol = "."
	}
	return Render(SkeletonStyle, strings.Repeat(symbol, width))
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// InfoMsg formats an info message
func InfoMsg(msg string) string {
	return Render(InfoStyle, msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

// ═══════════════════════════════════════════════════════════════════════════
// Section formatters - consistent output structure
// ═══════════════════════════════════════════════════════════════════════════

// SectionHeader formats a section header
func SectionHeader(title string) string {
	return Render(Bold, title)
}

// HelpLine formats a help line (key description)
func HelpLine(key, description string) string {
	return fmt.Sprintf("  %s %s", Render(HelpKey, key), Render(MutedStyle, description))
}

// Indent returns text indented by n spaces
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// ═══════════════════════════════════════════════════════════════════════════
// Color functions - simple string coloring (non-printf versions)
// ═══════════════════════════════════════════════════════════════════════════

func Cyan(s string) string        { return Render(InfoStyle, s) }
func Mute(s string) string        { return Render(MutedStyle, s) }
func SuccessText(s string) string { return Render(SuccessStyle, s) }
func WarningText(s string) string { return Render(WarningStyle, s) }
func ErrorText(s string) string   { return Render(ErrorStyle, s) }

// Printf-style color functions
func Mutef(format string, a ...any) string    { return Mute(fmt.Sprintf(format, a...)) }
func Boldf(format string, a ...any) string    { return Render(Bold, fmt.Sprintf(format, a...)) }
func Errorf(format string, a ...any) string   { return ErrorText(fmt.Sprintf(format, a...)) }
func Successf(format string, a ...any) string { return SuccessText(fmt.Sprintf(format, a...)) }
func Warningf(format string, a ...any) string { return WarningText(fmt.Sprintf(format, a...)) }
