package documents

import (
	"context"

	"exam-docs/internal/models"
)

// Table is one padded table of a document. Filled counts the rows that came
// from storage; the rest are blank.
type Table[Row any] struct {
	Key    models.GroupKey `json:"key"`
	Filled int             `json:"filled"`
	Rows   []Row           `json:"rows"`
}

// Pipeline is the Query -> Projection -> Padding chain shared by every
// document type. Keys is only needed for expansion; Number is optional and
// receives the 1-based position of each projected row.
type Pipeline[Raw, Row any] struct {
	Keys    func(ctx context.Context, p models.DocumentParams) ([]models.GroupKey, error)
	Fetch   func(ctx context.Context, p models.DocumentParams, key models.GroupKey) ([]Raw, error)
	Project func(Raw) Row
	Number  func(row *Row, n int)
}

// Build produces the table for a single key. An empty fetch is not an
// error and yields an all-blank table.
func (pl Pipeline[Raw, Row]) Build(ctx context.Context, p models.DocumentParams, key models.GroupKey) (Table[Row], error) {
	raw, err := pl.Fetch(ctx, p, key)
	if err != nil {
		return Table[Row]{}, err
	}

	rows := make([]Row, 0, max(len(raw), MinRows))
	for i, r := range raw {
		row := pl.Project(r)
		if pl.Number != nil {
			pl.Number(&row, i+1)
		}
		rows = append(rows, row)
	}

	return Table[Row]{Key: key, Filled: len(raw), Rows: Pad(rows, MinRows)}, nil
}

// Expand builds one table per key returned by Keys, in key order. No keys
// is ErrNotFound; any failing key aborts the whole expansion.
func (pl Pipeline[Raw, Row]) Expand(ctx context.Context, p models.DocumentParams) ([]Table[Row], error) {
	keys, err := pl.Keys(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, models.ErrNotFound
	}

	tables := make([]Table[Row], 0, len(keys))
	for _, key := range keys {
		t, err := pl.Build(ctx, p, key)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
