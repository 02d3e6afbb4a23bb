package grid

import "github.com/imgajeed76/gridcore/internal/rowmodel"

// skeletonPageSize is the number of placeholder rows shown while loading:
// the host-controlled page size, else the initial page size, else the
// default.
func skeletonPageSize(opts Options) int {
	if opts.State.Pagination.Valid && opts.State.Pagination.Value.PageSize > 0 {
		return opts.State.Pagination.Value.PageSize
	}
	if opts.InitialState.Pagination.PageSize > 0 {
		return opts.InitialState.Pagination.PageSize
	}
	return rowmodel.DefaultPageSize
}

// resolveDataset returns the data to feed the pipeline. While loading with
// no rows it fabricates skeleton records whose every leaf value is nil;
// otherwise the supplied slice is returned as is.
func resolveDataset(opts Options, loading bool) []Record {
	if !loading || len(opts.Data) > 0 {
		return opts.Data
	}
	leaves := LeafColumns(opts.Columns)
	n := skeletonPageSize(opts)
	out := make([]Record, n)
	for i := range out {
		rec := make(Record, len(leaves))
		for _, c := range leaves {
			rec[ColumnID(c)] = nil
		}
		out[i] = rec
	}
	return out
}
