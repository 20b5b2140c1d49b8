package board

import (
	"fmt"

	"github.com/inamate/canvasedit/internal/db"
	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
)

// toRows flattens b into element rows, z following paint order.
func toRows(b *document.Board) []db.ElementRow {
	ordered := b.Ordered()
	rows := make([]db.ElementRow, len(ordered))
	for i, el := range ordered {
		t := el.Transform
		rows[i] = db.ElementRow{
			BoardID:  b.ID,
			ID:       el.ID,
			Kind:     string(el.Kind),
			X:        t.X,
			Y:        t.Y,
			Width:    t.Width,
			Height:   t.Height,
			Rotation: t.Rotation,
			Text:     el.Text,
			Z:        int32(i),
		}
	}
	return rows
}

// fromRows rebuilds a board. Rows are expected in z order.
func fromRows(meta db.Board, rows []db.ElementRow) (*document.Board, error) {
	b := document.NewBoard(meta.ID, meta.Name, meta.OwnerID)
	b.CreatedAt = meta.CreatedAt
	for _, r := range rows {
		kind, err := document.ParseKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", r.ID, err)
		}
		el := document.NewElement(r.ID, kind, document.Load{
			Values: engine.Transform{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Rotation: r.Rotation},
			Text:   r.Text,
		})
		if err := b.Add(el); err != nil {
			return nil, fmt.Errorf("element %s: %w", r.ID, err)
		}
	}
	b.UpdatedAt = meta.UpdatedAt
	return b, nil
}
