package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
// Dark mode optimized, semantic colors
var (
	// Primary semantic colors
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - highlights, interactive
	Success = lipgloss.Color("#10B981") // emerald-500 - success
	Warning = lipgloss.Color("#F59E0B") // amber-500 - warnings, search matches
	Error   = lipgloss.Color("#EF4444") // red-500 - errors
	Info    = lipgloss.Color("#3B82F6") // blue-500 - headers, info
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB") // gray-50 - main text
	TextSecondary = lipgloss.Color("#9CA3AF") // gray-400 - descriptions
	TextTertiary  = lipgloss.Color("#6B7280") // gray-500 - placeholders

	// Background colors
	BgHighlight = lipgloss.Color("#1F2937") // gray-800 - cursor row
	BgBorder    = lipgloss.Color("#374151") // gray-700 - borders
	BgSelected  = lipgloss.Color("#312E81") // indigo-900 - selected rows
)

// Semantic color aliases for grid elements
var (
	ColorHeader   = Info    // Column headers
	ColorSorted   = Accent  // Sort indicators
	ColorGroup    = Warning // Group rows
	ColorSkeleton = BgBorder
	ColorFilter   = Success // Active filter summary
	ColorControl  = Muted   // Control column cells
)
