package document

import (
	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/typeid"
)

// NewSampleBoard returns the board shown to anonymous playground users.
func NewSampleBoard(boardID string) *Board {
	b := NewBoard(boardID, "Playground", "")

	elements := []*Element{
		NewElement(typeid.NewElementID(), KindRect, Load{
			Values: engine.Transform{X: 240, Y: 180, Width: 220, Height: 140},
		}),
		NewElement(typeid.NewElementID(), KindEllipse, Load{
			Values: engine.Transform{X: 560, Y: 220, Width: 160, Height: 160},
		}),
		NewElement(typeid.NewElementID(), KindRect, Load{
			Values: engine.Transform{X: 420, Y: 420, Width: 180, Height: 60, Rotation: 0.35},
		}),
		NewElement(typeid.NewElementID(), KindText, Load{
			Values: engine.Transform{X: 300, Y: 520, Width: 200, Height: 100},
			Text:   "Drag a handle to resize. Shift keeps the aspect ratio, Alt resizes from the center.",
		}),
	}
	for _, el := range elements {
		_ = b.Add(el)
	}
	return b
}
