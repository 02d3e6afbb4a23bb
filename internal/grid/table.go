package grid

import (
	"context"
	"io"
	"log/slog"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/imgajeed76/gridcore/internal/util"
)

// maxEffectPasses bounds re-evaluation when effects write state.
const maxEffectPasses = 4

// Table owns the view state of one grid across evaluations.
type Table struct {
	id    string
	opts  Options
	store *StateStore
	refs  *Refs
	log   *slog.Logger

	effects  *viewEffects
	pipeline *pipeline

	controls rowmodel.Memo[[]ColumnDef]
	columns  rowmodel.Memo[[]ColumnDef]
	engine   rowmodel.Memo[[]rowmodel.Column]
	data     rowmodel.Memo[[]Record]

	evaluations int
	dirty       bool
	last        *State
}

// New validates the options and creates a table with its state seeded
// from the initial state and defaults.
func New(opts Options) (*Table, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}
	t := &Table{
		id:       util.NewULID(),
		refs:     newRefs(),
		pipeline: newPipeline(),
	}
	t.setOptions(opts)
	t.store = newStateStore(seedState(opts), t.sliceChanged)
	t.effects = &viewEffects{log: t.log}
	t.log.Debug("table created",
		slog.Int("columns", len(LeafColumns(opts.Columns))),
		slog.Int("rows", len(opts.Data)))
	return t, nil
}

func (t *Table) setOptions(opts Options) {
	opts.Localization = opts.Localization.withDefaults()
	t.opts = opts
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t.log = log.With(slog.String("table", util.ShortID(t.id)))
	if t.effects != nil {
		t.effects.log = t.log
	}
}

// SetOptions replaces the options for the next evaluation. State is kept.
func (t *Table) SetOptions(opts Options) error {
	if err := Validate(opts); err != nil {
		return err
	}
	t.setOptions(opts)
	return nil
}

func (t *Table) ID() string { return t.id }

// Options returns the current options.
func (t *Table) Options() Options { return t.opts }

// Store exposes the state store.
func (t *Table) Store() *StateStore { return t.store }

// Refs returns the element handles shared by every instance.
func (t *Table) Refs() *Refs { return t.refs }

// Dirty reports whether internal state changed since the last evaluation.
func (t *Table) Dirty() bool { return t.dirty }

// Evaluations counts completed evaluation passes.
func (t *Table) Evaluations() int { return t.evaluations }

func (t *Table) sliceChanged(name string) {
	t.dirty = true
	t.log.Debug("state changed", slog.String("slice", name))
	if t.opts.OnInvalidate != nil {
		t.opts.OnInvalidate()
	}
}

// Evaluate assembles the instance for the current options and state, runs
// the view effects and re-evaluates while effects keep changing state.
// It never fails; invalid input was rejected by New or SetOptions.
func (t *Table) Evaluate() *Instance {
	var inst *Instance
	for pass := 0; pass < maxEffectPasses; pass++ {
		t.dirty = false
		inst = t.assemble()
		t.effects.run(inst)
		if !t.dirty {
			break
		}
	}
	if t.opts.InstanceRef != nil {
		t.opts.InstanceRef.Current = inst
	}
	return inst
}

func (t *Table) assemble() *Instance {
	t.evaluations++
	o := t.opts
	t.store.bind(o.State, o.Handlers)
	st := t.store.Snapshot()

	controls := t.controls.Get([]any{
		st.ColumnOrder, st.Grouping, o.Features, o.Localization,
		o.DefaultDisplayColumn, o.DisplayColumnDefOptions,
		o.RenderDetailPanel != nil, o.RenderRowActions,
	}, func() []ColumnDef {
		return synthesizeControls(synthInput{
			columnOrder:    st.ColumnOrder,
			grouping:       st.Grouping,
			features:       o.Features,
			localization:   o.Localization,
			defaultDisplay: o.DefaultDisplayColumn,
			overrides:      o.DisplayColumnDefOptions,
			detailPanel:    o.RenderDetailPanel != nil,
			rowActions:     o.RenderRowActions,
		})
	})

	columns := t.columns.Get([]any{controls, o.Columns, st.ColumnFilterFns, o.FilterFns}, func() []ColumnDef {
		return prepareColumns(controls, o.Columns, prepareInput{
			columnFilterFns: st.ColumnFilterFns,
			filterFns:       o.FilterFns,
		})
	})

	engine := t.engine.Get([]any{columns, o.Features}, func() []rowmodel.Column {
		return engineColumns(columns, o.Features)
	})

	loading := st.IsLoading || st.ShowSkeletons
	data := t.data.Get([]any{o.Data, st.IsLoading, st.ShowSkeletons, skeletonPageSize(o), o.Columns}, func() []Record {
		return resolveDataset(o, loading)
	})

	rows := t.pipeline.compose(pipelineInput{
		data:      data,
		columns:   engine,
		state:     st,
		features:  o.Features,
		filterFns: o.FilterFns,
		subRows:   o.GetSubRows,
	})

	base := &Instance{
		ID:           util.NewULID(),
		TableID:      t.id,
		Evaluation:   t.evaluations,
		Refs:         t.refs,
		state:        st,
		options:      &o,
		localization: o.Localization,
		columns:      columns,
		leaves:       LeafColumns(columns),
		rows:         rows,
		store:        t.store,
	}
	inst := applyPlugins(base, o.Plugins)

	if t.log.Enabled(context.Background(), slog.LevelDebug) {
		attrs := []any{
			slog.Int("evaluation", t.evaluations),
			slog.Int("rows", rows.Final().Len()),
			slog.Any("stages", rows.Enabled()),
		}
		if t.last != nil {
			if diff := DescribeStateChange(*t.last, st); diff != "" {
				attrs = append(attrs, slog.String("changes", diff))
			}
		}
		t.log.Debug("evaluate", attrs...)
	}
	t.last = &st
	return inst
}

// Close releases the fullscreen takeover, restoring the surface height
// captured on the first evaluation.
func (t *Table) Close() {
	t.effects.close()
}
