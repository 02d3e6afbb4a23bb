package grid

import (
	"log/slog"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

// FillHeight is the height a surface takes in fullscreen mode.
const FillHeight = "100%"

// Surface is the ambient container a table lives in, such as a terminal
// screen or a page body. Fullscreen mode takes over its height.
type Surface interface {
	Height() string
	SetHeight(h string)
}

// fullScreenLease holds the surface while fullscreen mode is on and puts
// the captured height back on release.
type fullScreenLease struct {
	surface Surface
	restore string
}

func (l *fullScreenLease) release() {
	l.surface.SetHeight(l.restore)
}

// viewEffects reacts to the assembled instance: the fullscreen surface
// takeover and keeping the page index in range.
type viewEffects struct {
	log *slog.Logger

	mounted    bool
	hasCapture bool
	captured   string
	surface    Surface
	lease      *fullScreenLease
	fullScreen bool

	pageDeps []any
}

func (e *viewEffects) run(inst *Instance) {
	e.syncFullScreen(inst.options.Surface, inst.state.IsFullScreen)
	e.keepPageInBounds(inst)
	e.mounted = true
}

func (e *viewEffects) syncFullScreen(surface Surface, fullScreen bool) {
	if surface != e.surface {
		// A swapped surface gets its old height back and the new one is
		// captured fresh.
		e.exitFullScreen()
		e.surface = surface
		e.hasCapture = false
		e.fullScreen = false
	}
	if surface == nil {
		return
	}
	if !e.hasCapture {
		e.captured = surface.Height()
		e.hasCapture = true
	} else if fullScreen == e.fullScreen {
		return
	}
	e.fullScreen = fullScreen
	if fullScreen {
		e.enterFullScreen(surface)
	} else {
		e.exitFullScreen()
	}
}

func (e *viewEffects) enterFullScreen(surface Surface) {
	if e.lease != nil {
		return
	}
	e.lease = &fullScreenLease{surface: surface, restore: e.captured}
	surface.SetHeight(FillHeight)
	e.log.Debug("enter fullscreen", slog.String("restore", e.captured))
}

func (e *viewEffects) exitFullScreen() {
	if e.lease == nil {
		return
	}
	e.lease.release()
	e.log.Debug("exit fullscreen", slog.String("height", e.lease.restore))
	e.lease = nil
}

// keepPageInBounds moves the page index back to the last page once the row
// count shrinks below the first row of the current page.
func (e *viewEffects) keepPageInBounds(inst *Instance) {
	rowCount := inst.options.RowCount
	deps := []any{rowCount.Valid, rowCount.Value, inst.rows.PrePagination().Len()}
	if e.mounted && rowmodel.SameDeps(e.pageDeps, deps) {
		return
	}
	e.pageDeps = deps

	p := inst.state.Pagination
	if p.PageSize <= 0 {
		return
	}
	total := inst.RowCount()
	first := p.PageIndex * p.PageSize
	if first > total {
		last := total / p.PageSize
		e.log.Debug("page out of range",
			slog.Int("page", p.PageIndex),
			slog.Int("rows", total),
			slog.Int("moveTo", last))
		inst.SetPageIndex(last)
	}
}

func (e *viewEffects) close() {
	e.exitFullScreen()
	e.fullScreen = false
}
