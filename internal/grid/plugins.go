package grid

// Extension names of the built-in plugins.
const (
	ExtPageSummary      = "pageSummary"
	ExtSelectionSummary = "selectionSummary"
)

// PageSummary describes the visible page.
type PageSummary struct {
	PageIndex   int
	PageCount   int
	VisibleRows int
	TotalRows   int
	FirstRow    int
	LastRow     int
}

// PageSummaryPlugin adds a PageSummary under ExtPageSummary.
func PageSummaryPlugin() Plugin {
	return func(inst *Instance) Fields {
		p := inst.state.Pagination
		visible := inst.rows.Paginated().Len()
		s := PageSummary{
			PageIndex:   p.PageIndex,
			PageCount:   inst.PageCount(),
			VisibleRows: visible,
			TotalRows:   inst.RowCount(),
		}
		if visible > 0 {
			s.FirstRow = 1
			if inst.options.Features.EnablePagination {
				s.FirstRow = p.PageIndex*p.PageSize + 1
			}
			s.LastRow = s.FirstRow + visible - 1
		}
		return Fields{ExtPageSummary: s}
	}
}

// SelectionSummary lists the selected rows.
type SelectionSummary struct {
	IDs                 []string
	Count               int
	AllPageRowsSelected bool
}

// SelectionSummaryPlugin adds a SelectionSummary under ExtSelectionSummary.
func SelectionSummaryPlugin() Plugin {
	return func(inst *Instance) Fields {
		ids := inst.SelectedRowIDs()
		return Fields{ExtSelectionSummary: SelectionSummary{
			IDs:                 ids,
			Count:               len(ids),
			AllPageRowsSelected: inst.AllPageRowsSelected(),
		}}
	}
}
