package grid

import (
	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

// Stage names, in pipeline order.
const (
	StageFilter   = "filter"
	StageGroup    = "group"
	StageSort     = "sort"
	StagePaginate = "paginate"
	StageExpand   = "expand"
	StageFacet    = "facet"
)

var stageOrder = []string{StageFilter, StageGroup, StageSort, StagePaginate, StageExpand}

type stage struct {
	name    string
	enabled bool
	deps    []any
	run     func(in *rowmodel.Model) *rowmodel.Model
}

// pipeline keeps one memo per stage so unchanged inputs reuse the
// previous evaluation's models.
type pipeline struct {
	core   rowmodel.Memo[*rowmodel.Model]
	stages map[string]*rowmodel.Memo[*rowmodel.Model]
	facets map[string]*rowmodel.Memo[*rowmodel.Model]
}

func newPipeline() *pipeline {
	p := &pipeline{
		stages: make(map[string]*rowmodel.Memo[*rowmodel.Model]),
		facets: make(map[string]*rowmodel.Memo[*rowmodel.Model]),
	}
	for _, name := range stageOrder {
		p.stages[name] = new(rowmodel.Memo[*rowmodel.Model])
	}
	return p
}

type pipelineInput struct {
	data      []Record
	columns   []rowmodel.Column
	state     State
	features  Features
	filterFns map[string]rowmodel.FilterFunc
	subRows   rowmodel.SubRowsFunc
}

// RowModels holds the output of every enabled stage.
type RowModels struct {
	core    *rowmodel.Model
	outputs map[string]*rowmodel.Model
	enabled []string
	facet   func(columnID string) *rowmodel.Model
}

func globalFilterFunc(name string, custom map[string]rowmodel.FilterFunc) rowmodel.FilterFunc {
	if fn, ok := rowmodel.LookupFilter(name, custom); ok {
		return fn
	}
	return rowmodel.Fuzzy
}

func (p *pipeline) compose(in pipelineInput) *RowModels {
	f := in.features
	st := in.state
	global := rowmodel.GlobalFilter{
		Value: st.GlobalFilter,
		Fn:    globalFilterFunc(st.GlobalFilterFn, in.filterFns),
	}

	core := p.core.Get([]any{in.data, in.columns, in.subRows}, func() *rowmodel.Model {
		return rowmodel.Core(in.data, in.columns, in.subRows)
	})

	stages := []stage{
		{
			name:    StageFilter,
			enabled: f.EnableColumnFilters || f.EnableGlobalFilter || f.EnableFilters,
			deps:    []any{in.columns, st.ColumnFilters, st.GlobalFilter, st.GlobalFilterFn, in.filterFns},
			run: func(m *rowmodel.Model) *rowmodel.Model {
				return rowmodel.Filter(m, in.columns, st.ColumnFilters, global)
			},
		},
		{
			name:    StageGroup,
			enabled: f.EnableGrouping,
			deps:    []any{in.columns, st.Grouping},
			run: func(m *rowmodel.Model) *rowmodel.Model {
				return rowmodel.Group(m, in.columns, st.Grouping)
			},
		},
		{
			name:    StageSort,
			enabled: f.EnableSorting,
			deps:    []any{in.columns, st.Sorting},
			run: func(m *rowmodel.Model) *rowmodel.Model {
				return rowmodel.Sort(m, in.columns, st.Sorting)
			},
		},
		{
			name:    StagePaginate,
			enabled: f.EnablePagination,
			deps:    []any{st.Pagination},
			run: func(m *rowmodel.Model) *rowmodel.Model {
				return rowmodel.Paginate(m, st.Pagination)
			},
		},
		{
			name:    StageExpand,
			enabled: f.EnableExpanding || f.EnableGrouping,
			deps:    []any{st.Expanded},
			run: func(m *rowmodel.Model) *rowmodel.Model {
				return rowmodel.Expand(m, st.Expanded)
			},
		},
	}

	out := &RowModels{core: core, outputs: make(map[string]*rowmodel.Model)}
	cur := core
	for _, s := range stages {
		if !s.enabled {
			continue
		}
		input := cur
		deps := append([]any{input}, s.deps...)
		cur = p.stages[s.name].Get(deps, func() *rowmodel.Model { return s.run(input) })
		out.outputs[s.name] = cur
		out.enabled = append(out.enabled, s.name)
	}

	if f.EnableFacetedValues {
		out.enabled = append(out.enabled, StageFacet)
		out.facet = func(columnID string) *rowmodel.Model {
			memo, ok := p.facets[columnID]
			if !ok {
				memo = new(rowmodel.Memo[*rowmodel.Model])
				p.facets[columnID] = memo
			}
			deps := []any{core, in.columns, st.ColumnFilters, st.GlobalFilter, st.GlobalFilterFn}
			return memo.Get(deps, func() *rowmodel.Model {
				return rowmodel.Faceted(core, in.columns, st.ColumnFilters, global, columnID)
			})
		}
	}
	return out
}

// after is the model once the named stage has run, or its input when the
// stage is disabled.
func (m *RowModels) after(name string) *rowmodel.Model {
	cur := m.core
	for _, s := range stageOrder {
		if out, ok := m.outputs[s]; ok {
			cur = out
		}
		if s == name {
			break
		}
	}
	return cur
}

// before is the input the named stage receives.
func (m *RowModels) before(name string) *rowmodel.Model {
	cur := m.core
	for _, s := range stageOrder {
		if s == name {
			break
		}
		if out, ok := m.outputs[s]; ok {
			cur = out
		}
	}
	return cur
}

// Enabled lists the stages that ran, in order.
func (m *RowModels) Enabled() []string {
	return append([]string(nil), m.enabled...)
}

func (m *RowModels) Core() *rowmodel.Model          { return m.core }
func (m *RowModels) Filtered() *rowmodel.Model      { return m.after(StageFilter) }
func (m *RowModels) Grouped() *rowmodel.Model       { return m.after(StageGroup) }
func (m *RowModels) Sorted() *rowmodel.Model        { return m.after(StageSort) }
func (m *RowModels) PrePagination() *rowmodel.Model { return m.before(StagePaginate) }
func (m *RowModels) Paginated() *rowmodel.Model     { return m.after(StagePaginate) }
func (m *RowModels) Final() *rowmodel.Model         { return m.after(StageExpand) }

// Faceted is the model a column's filter sees. Without faceting it is the
// unfiltered core model.
func (m *RowModels) Faceted(columnID string) *rowmodel.Model {
	if m.facet == nil {
		return m.core
	}
	return m.facet(columnID)
}
