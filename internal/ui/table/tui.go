package table

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/mattn/go-runewidth"
)

// Table mode
type tableMode int

const (
	tableModeNormal tableMode = iota
	tableModeSearch
	tableModeFilter
)

// Exit mode: what to do after quitting the TUI
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// heightAuto is the surface height outside fullscreen mode.
const heightAuto = "auto"

// screen is the terminal surface the grid lives on. Fullscreen mode takes
// it over by switching to the alternate screen.
type screen struct {
	height  string
	pending []tea.Cmd
}

func newScreen() *screen { return &screen{height: heightAuto} }

func (s *screen) Height() string { return s.height }

func (s *screen) SetHeight(h string) {
	if h == s.height {
		return
	}
	s.height = h
	if h == grid.FillHeight {
		s.pending = append(s.pending, tea.EnterAltScreen)
	} else {
		s.pending = append(s.pending, tea.ExitAltScreen)
	}
}

func (s *screen) fullScreen() bool { return s.height == grid.FillHeight }

// flush returns the screen commands queued by the last evaluation.
func (s *screen) flush() tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

type loadedMsg struct {
	rows []grid.Record
	err  error
}

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

type tableModel struct {
	table  *grid.Table
	inst   *grid.Instance
	frame  Frame
	opts   DisplayOptions
	screen *screen

	cursor    int // selected line
	colCursor int // selected column
	scrollX   int // horizontal scroll offset in cells
	scrollY   int // vertical scroll offset in lines
	width     int
	height    int
	ready     bool

	mode        tableMode
	input       textinput.Model
	filterCol   string
	spinner     spinner.Model
	loadErr     error
	exitMode    exitMode
	statusMsg   string
	statusUntil time.Time
	initCmd     tea.Cmd
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Home        key.Binding
	End         key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Search      key.Binding
	Filter      key.Binding
	Sort        key.Binding
	MultiSort   key.Binding
	Group       key.Binding
	Expand      key.Binding
	ExpandAll   key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	Density     key.Binding
	FullScreen  key.Binding
	Hide        key.Binding
	ShowAll     key.Binding
	YankCell    key.Binding
	YankRow     key.Binding
	ExportJSON  key.Binding
	ExportRaw   key.Binding
	ExportPlain key.Binding
	Quit        key.Binding
}

var tableKeys = tableKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev column")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next column")),
	Home:        key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first row")),
	End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	NextPage:    key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:    key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "filter column")),
	Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	MultiSort:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "add sort")),
	Group:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
	Expand:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "expand")),
	ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
	Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	Density:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "density")),
	FullScreen:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
	Hide:        key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide column")),
	ShowAll:     key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "show all columns")),
	YankCell:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	YankRow:     key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row")),
	ExportJSON:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	ExportRaw:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	ExportPlain: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// RunTUI launches the interactive grid. It blocks until the user quits. If
// the user requests an export (J/R/P), the grid is printed to stdout after
// the TUI exits.
func RunTUI(t *grid.Table, opts DisplayOptions) error {
	m, err := newTableModel(t, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(tableModel)
	if !ok {
		return nil
	}
	if fm.loadErr != nil {
		return fm.loadErr
	}

	out := opts
	out.Load = nil
	switch fm.exitMode {
	case exitJSON:
		out.JSON = true
		return Print(os.Stdout, t, out)
	case exitRaw:
		out.Raw = true
		return Print(os.Stdout, t, out)
	case exitPlain:
		return Print(os.Stdout, t, out)
	}
	return nil
}

func newTableModel(t *grid.Table, opts DisplayOptions) (tableModel, error) {
	scr := newScreen()
	o := t.Options()
	o.Surface = scr
	if opts.Load != nil {
		o.State.IsLoading = grid.Some(true)
	}
	if err := t.SetOptions(o); err != nil {
		return tableModel{}, err
	}

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SortStyle

	m := tableModel{
		table:   t,
		opts:    opts,
		screen:  scr,
		input:   ti,
		spinner: sp,
	}
	m.initCmd = m.refresh()
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initCmd}
	if m.opts.Load != nil {
		load := m.opts.Load
		cmds = append(cmds, m.spinner.Tick, func() tea.Msg {
			rows, err := load(context.Background())
			return loadedMsg{rows: rows, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ensureRowVisible()
		return m, nil

	case spinner.TickMsg:
		if !m.frame.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, tea.Quit
		}
		o := m.table.Options()
		o.Data = msg.rows
		o.State.IsLoading = grid.Opt[bool]{}
		if err := m.table.SetOptions(o); err != nil {
			m.loadErr = err
			return m, tea.Quit
		}
		return m, m.refresh()

	case statusClearMsg:
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != tableModeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m tableModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inst := m.inst
	features := inst.Options().Features
	col, hasCol := m.currentColumn()
	row, hasRow := m.currentRow()
	dataCol := hasCol && !col.IsControl()

	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}
		return m, nil

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < len(m.frame.Lines)-1 {
			m.cursor++
			m.ensureRowVisible()
		}
		return m, nil

	case key.Matches(msg, tableKeys.Left):
		if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisible()
		}
		return m, nil

	case key.Matches(msg, tableKeys.Right):
		if m.colCursor < len(m.frame.Columns)-1 {
			m.colCursor++
			m.ensureColVisible()
		}
		return m, nil

	case key.Matches(msg, tableKeys.Home):
		m.cursor, m.scrollY = 0, 0
		return m, nil

	case key.Matches(msg, tableKeys.End):
		if n := len(m.frame.Lines); n > 0 {
			m.cursor = n - 1
			m.ensureRowVisible()
		}
		return m, nil

	case key.Matches(msg, tableKeys.Search):
		if !features.EnableGlobalFilter {
			return m, m.setStatus("search is disabled")
		}
		inst.SetShowGlobalFilter(true)
		m.mode = tableModeSearch
		m.input.Placeholder = "search..."
		m.input.SetValue(inst.State().GlobalFilter)
		m.input.Focus()
		return m, tea.Batch(m.refresh(), textinput.Blink)

	case key.Matches(msg, tableKeys.Filter):
		if !features.EnableColumnFilters || !dataCol {
			return m, m.setStatus("column filters are disabled")
		}
		inst.SetShowColumnFilters(true)
		m.mode = tableModeFilter
		m.filterCol = col.ID
		m.input.Placeholder = fmt.Sprintf("%s (%s)", inst.HeaderText(col), col.ActiveFilterFn())
		m.input.SetValue(currentFilter(inst.State(), col.ID))
		m.input.Focus()
		return m, tea.Batch(m.refresh(), textinput.Blink)

	case key.Matches(msg, tableKeys.Sort), key.Matches(msg, tableKeys.MultiSort):
		if !features.EnableSorting || !dataCol {
			return m, nil
		}
		inst.ToggleSorting(col.ID, key.Matches(msg, tableKeys.MultiSort))

	case key.Matches(msg, tableKeys.Group):
		if !dataCol || !col.CanGroup(features) {
			return m, nil
		}
		inst.ToggleGrouping(col.ID)

	case key.Matches(msg, tableKeys.Expand):
		if !hasRow {
			return m, nil
		}
		inst.ToggleExpanded(row.ID)

	case key.Matches(msg, tableKeys.ExpandAll):
		inst.ToggleAllRowsExpanded()

	case key.Matches(msg, tableKeys.Select):
		if !features.EnableRowSelection || !hasRow {
			return m, nil
		}
		inst.ToggleRowSelected(row.ID)

	case key.Matches(msg, tableKeys.SelectAll):
		if !features.EnableRowSelection || !features.EnableMultiRowSelection {
			return m, nil
		}
		inst.ToggleAllPageRowsSelected()

	case key.Matches(msg, tableKeys.NextPage):
		inst.NextPage()

	case key.Matches(msg, tableKeys.PrevPage):
		inst.PreviousPage()

	case key.Matches(msg, tableKeys.Density):
		inst.SetDensity(inst.State().Density.Next())

	case key.Matches(msg, tableKeys.FullScreen):
		inst.ToggleFullScreen()

	case key.Matches(msg, tableKeys.Hide):
		if !dataCol || !col.CanHide(features) {
			return m, nil
		}
		inst.ToggleColumnVisibility(col.ID)

	case key.Matches(msg, tableKeys.ShowAll):
		inst.SetColumnVisibility(map[string]bool{})

	case key.Matches(msg, tableKeys.YankCell):
		return m, m.yankCell()

	case key.Matches(msg, tableKeys.YankRow):
		return m, m.yankRow()

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit

	default:
		return m, nil
	}

	return m, m.refresh()
}

// ═══════════════════════════════════════════════════════════════════════════
// Search and column filter input
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.SetValue("")
		m.apply("")
		m.closeInput()
		return m, m.refresh()
	case tea.KeyEnter:
		m.closeInput()
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Live filter as user types
	m.apply(m.input.Value())
	return m, tea.Batch(cmd, m.refresh())
}

func (m *tableModel) apply(text string) {
	switch m.mode {
	case tableModeSearch:
		m.inst.SetGlobalFilter(text)
	case tableModeFilter:
		col, ok := m.inst.Column(m.filterCol)
		if !ok {
			return
		}
		m.inst.SetColumnFilter(col.ID, parseFilterInput(text, col))
		m.inst.SetPageIndex(0)
	}
}

func (m *tableModel) closeInput() {
	if m.mode == tableModeSearch && m.input.Value() == "" {
		m.inst.SetShowGlobalFilter(false)
	}
	m.mode = tableModeNormal
	m.input.Blur()
	m.filterCol = ""
}

func currentFilter(st grid.State, columnID string) string {
	for _, f := range st.ColumnFilters {
		if f.ID != columnID {
			continue
		}
		if vals, ok := f.Value.([]any); ok {
			parts := make([]string, len(vals))
			for i, v := range vals {
				parts[i] = rowmodel.ToString(v)
			}
			if len(parts) == 2 {
				return parts[0] + ".." + parts[1]
			}
			return strings.Join(parts, ",")
		}
		return rowmodel.ToString(f.Value)
	}
	return ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Evaluation
// ═══════════════════════════════════════════════════════════════════════════

// refresh re-evaluates the table and clamps the cursor to the new frame.
// Screen changes requested by the fullscreen effect are returned.
func (m *tableModel) refresh() tea.Cmd {
	m.inst = m.table.Evaluate()
	m.frame = BuildFrame(m.inst, m.opts.Title, m.opts.MaxCellWidth)

	if m.cursor >= len(m.frame.Lines) {
		m.cursor = max(0, len(m.frame.Lines)-1)
	}
	if m.colCursor >= len(m.frame.Columns) {
		m.colCursor = max(0, len(m.frame.Columns)-1)
	}
	m.ensureRowVisible()
	m.ensureColVisible()
	return m.screen.flush()
}

func (m tableModel) currentColumn() (grid.ColumnDef, bool) {
	if m.colCursor >= len(m.frame.Columns) {
		return grid.ColumnDef{}, false
	}
	return m.inst.Column(m.frame.Columns[m.colCursor].ID)
}

func (m tableModel) currentRow() (*rowmodel.Row, bool) {
	if m.cursor >= len(m.frame.Lines) || m.frame.Lines[m.cursor].Skeleton {
		return nil, false
	}
	return m.inst.Row(m.frame.Lines[m.cursor].RowID)
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

// setStatus sets a temporary status message that auto-clears.
func (m *tableModel) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank)
// ═══════════════════════════════════════════════════════════════════════════

// yankCell copies the selected cell value to the system clipboard.
func (m *tableModel) yankCell() tea.Cmd {
	row, ok := m.currentRow()
	col, hasCol := m.currentColumn()
	if !ok || !hasCol {
		return nil
	}
	val := rowmodel.ToString(row.Value(col.ID))
	if err := clipboard.WriteAll(val); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied: %s", runewidth.Truncate(val, 40, "...")))
}

// yankRow copies the data cells of the selected row (tab-separated).
func (m *tableModel) yankRow() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	var cells []string
	for _, c := range m.inst.VisibleColumns() {
		if !c.IsControl() {
			cells = append(cells, rowmodel.ToString(row.Value(c.ID)))
		}
	}
	if err := clipboard.WriteAll(strings.Join(cells, "\t")); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(cells)))
}

// ═══════════════════════════════════════════════════════════════════════════
// Scroll Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) colStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.frame.Columns); i++ {
		x += m.frame.Columns[i].Width + m.frame.Gap
	}
	return x
}

func (m tableModel) totalWidth() int {
	return m.colStartX(len(m.frame.Columns))
}

func (m *tableModel) ensureRowVisible() {
	visible := m.visibleRowCount()
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	} else if m.cursor >= m.scrollY+visible {
		m.scrollY = m.cursor - visible + 1
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m *tableModel) ensureColVisible() {
	if len(m.frame.Columns) == 0 || m.width == 0 {
		return
	}
	start := m.colStartX(m.colCursor)
	end := start + m.frame.Columns[m.colCursor].Width
	viewport := m.width - 2

	if start < m.scrollX {
		m.scrollX = start
	} else if end > m.scrollX+viewport {
		m.scrollX = max(start, end-viewport)
	}
	maxX := max(0, m.totalWidth()-viewport)
	m.scrollX = min(max(m.scrollX, 0), maxX)
}

func (m tableModel) visibleRowCount() int {
	count := m.height - 6 // title, input, header, separator + footer (2 lines)
	if count < 1 {
		count = 1
	}
	return count
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) View() string {
	if !m.ready {
		return m.inst.Localization().Loading
	}

	var sb strings.Builder

	title := m.frame.Title
	if title == "" {
		title = "grid"
	}
	sb.WriteString(styles.Render(styles.TitleStyle, title))
	if m.frame.Loading {
		sb.WriteString(" " + m.spinner.View() + " " + styles.Mute(m.inst.Localization().Loading))
	}
	if m.screen.fullScreen() {
		sb.WriteString(styles.Mute("  [fullscreen]"))
	}
	sb.WriteString(styles.Mute(fmt.Sprintf("  %s", m.inst.State().Density)))
	sb.WriteString("\n")

	switch m.mode {
	case tableModeSearch:
		sb.WriteString("/" + m.input.View() + "\n")
	case tableModeFilter:
		sb.WriteString(styles.Render(styles.FilterStyle, m.filterCol) + " " + m.input.View() + "\n")
	default:
		sb.WriteString(styles.Render(styles.FilterStyle, m.frame.Filters) + "\n")
	}

	sb.WriteString(m.renderTable())

	sb.WriteString("\n")
	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		sb.WriteString(styles.SuccessMsg(m.statusMsg))
	} else if m.mode != tableModeNormal {
		sb.WriteString(styles.Mute("enter confirm  esc clear"))
	} else {
		sb.WriteString(styles.Mute(m.frame.Footer + "  │  / search  c filter  s sort  g group  e expand  space select  n/p page  d density  f fullscreen  H hide  y copy  q quit"))
	}
	return sb.String()
}

func (m tableModel) renderTable() string {
	if len(m.frame.Columns) == 0 {
		return "No columns\n"
	}

	var sb strings.Builder
	viewport := m.width - 2
	gap := strings.Repeat(" ", m.frame.Gap)

	var header, sep []string
	for i, c := range m.frame.Columns {
		h := headerCell(c)
		s := strings.Repeat("─", c.Width)
		if i == m.colCursor {
			h = styles.Render(styles.CursorCellStyle, fit(headerLabel(c), c.Width))
			s = styles.Render(styles.SortStyle, s)
		} else {
			s = styles.Mute(s)
		}
		header = append(header, h)
		sep = append(sep, s)
	}
	sb.WriteString(applyViewport(strings.Join(header, gap), m.scrollX, viewport) + "\n")
	sb.WriteString(applyViewport(strings.Join(sep, gap), m.scrollX, viewport) + "\n")

	if len(m.frame.Lines) == 0 {
		sb.WriteString(styles.Mute(m.frame.Empty) + "\n")
		return sb.String()
	}

	end := min(m.scrollY+m.visibleRowCount(), len(m.frame.Lines))
	for idx := m.scrollY; idx < end; idx++ {
		line := m.frame.Lines[idx]
		var rendered string
		if idx == m.cursor && !line.Skeleton {
			rendered = m.cursorLine(line, gap)
		} else {
			rendered = renderLine(m.frame, line, gap)
		}
		sb.WriteString(applyViewport(rendered, m.scrollX, viewport) + "\n")
		if line.Detail != "" {
			sb.WriteString(styles.Indent(styles.Mute(line.Detail), indentWidth*(line.Depth+1)) + "\n")
		}
	}

	var indicators []string
	if m.scrollX > 0 {
		indicators = append(indicators, "◀")
	}
	if m.scrollX+viewport < m.totalWidth() {
		indicators = append(indicators, "▶")
	}
	if m.scrollY > 0 {
		indicators = append(indicators, "▲")
	}
	if end < len(m.frame.Lines) {
		indicators = append(indicators, "▼")
	}
	if len(indicators) > 0 {
		sb.WriteString(styles.Mute(strings.Join(indicators, " ")))
	}
	return sb.String()
}

func (m tableModel) cursorLine(line Line, gap string) string {
	cells := make([]string, len(m.frame.Columns))
	for i, c := range m.frame.Columns {
		text := fit(line.Cells[i], c.Width)
		if i == m.colCursor {
			cells[i] = styles.Render(styles.CursorCellStyle, text)
		} else {
			cells[i] = styles.Render(styles.CursorRowStyle, text)
		}
	}
	return strings.Join(cells, styles.Render(styles.CursorRowStyle, gap))
}

// ═══════════════════════════════════════════════════════════════════════════
// ANSI-aware Viewport Slicing
// ═══════════════════════════════════════════════════════════════════════════

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes and wide runes. It returns the portion of the string from display
// column startX with the given width.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	if startX < 0 {
		startX = 0
	}

	var result strings.Builder
	result.Grow(width + 64)

	visualPos := 0
	outputCells := 0
	stylesApplied := false
	inEscape := false
	var escapeSeq strings.Builder
	var activeStyles []string

	runes := []rune(s)
	for i := 0; i < len(runes) && outputCells < width; i++ {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			inEscape = true
			escapeSeq.Reset()
			escapeSeq.WriteRune(r)
			continue
		}

		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				seq := escapeSeq.String()
				if r == 'm' {
					if seq == "\x1b[0m" || seq == "\x1b[m" {
						activeStyles = nil
					} else {
						activeStyles = append(activeStyles, seq)
					}
				}
				if visualPos >= startX {
					result.WriteString(seq)
				}
			}
			continue
		}

		w := runewidth.RuneWidth(r)
		if visualPos >= startX {
			if outputCells+w > width {
				break
			}
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputCells += w
		} else if visualPos+w > startX {
			// wide rune cut by the left edge
			result.WriteString(strings.Repeat(" ", visualPos+w-startX))
			outputCells += visualPos + w - startX
		}
		visualPos += w
	}

	if len(activeStyles) > 0 && outputCells > 0 {
		result.WriteString("\x1b[0m")
	}
	if outputCells < width {
		result.WriteString(strings.Repeat(" ", width-outputCells))
	}
	return result.String()
}
