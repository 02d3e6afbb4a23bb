package ui

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	styles.SetNoColor(true)
	st := lipgloss.NewStyle()

	require.Equal(t, "⠋ Loading", frame(st, 0, "Loading", 300*time.Millisecond))
	require.Equal(t, "⠙ Loading (2s)", frame(st, 1, "Loading", 2500*time.Millisecond))
	require.Equal(t, "⠋ Loading", frame(st, len(frames), "Loading", 0))
}

func TestSpinner_StopTwice(t *testing.T) {
	sp := NewSpinner("x")
	sp.Start()
	sp.Stop()
	sp.Stop()
}
