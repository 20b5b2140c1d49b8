package document

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"github.com/inamate/canvasedit/internal/engine"
)

var (
	ErrElementExists   = errors.New("element already exists")
	ErrElementNotFound = errors.New("element not found")
	ErrUnknownKind     = errors.New("unknown element kind")
)

type Kind string

const (
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindText, KindRect, KindEllipse:
		return k, nil
	}
	return "", ErrUnknownKind
}

// DefaultSize is the size an element gets when placed by the user.
func (k Kind) DefaultSize() (width, height float64) {
	if k == KindText {
		return 200, 100
	}
	return 0, 0
}

// StartsPlacement reports whether a newly placed element of this kind is
// sized by dragging out its bottom-right corner.
func (k Kind) StartsPlacement() bool {
	w, h := k.DefaultSize()
	return w == 0 && h == 0
}

type Element struct {
	ID        string           `json:"id"`
	Kind      Kind             `json:"kind"`
	Transform engine.Transform `json:"transform"`
	Text      string           `json:"text,omitempty"`
}

// IsEmpty reports whether a text element has nothing to show. The host
// removes such elements when editing ends.
func (e *Element) IsEmpty() bool {
	return e.Kind == KindText && strings.TrimSpace(e.Text) == ""
}

// ContentRenderer draws an element's content into a width×height image in
// the element's local frame.
type ContentRenderer interface {
	Render(ctx context.Context, el Element, width, height int) (image.Image, error)
}

// Board is an ordered collection of elements. It is not safe for concurrent
// use.
type Board struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	OwnerID   string              `json:"ownerId,omitempty"`
	Elements  map[string]*Element `json:"elements"`
	Order     []string            `json:"order"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func NewBoard(id, name, ownerID string) *Board {
	now := time.Now().UTC()
	return &Board{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Elements:  map[string]*Element{},
		Order:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add appends el at the top of the paint order.
func (b *Board) Add(el *Element) error {
	if _, ok := b.Elements[el.ID]; ok {
		return ErrElementExists
	}
	b.Elements[el.ID] = el
	b.Order = append(b.Order, el.ID)
	b.touch()
	return nil
}

func (b *Board) Remove(id string) error {
	if _, ok := b.Elements[id]; !ok {
		return ErrElementNotFound
	}
	delete(b.Elements, id)
	b.Order = removeID(b.Order, id)
	b.touch()
	return nil
}

func (b *Board) Get(id string) (*Element, bool) {
	el, ok := b.Elements[id]
	return el, ok
}

// Ordered returns the elements bottom to top.
func (b *Board) Ordered() []*Element {
	out := make([]*Element, 0, len(b.Order))
	for _, id := range b.Order {
		if el, ok := b.Elements[id]; ok {
			out = append(out, el)
		}
	}
	return out
}

// BringToFront moves ids to the top of the paint order, keeping their
// relative order. Unknown ids are skipped.
func (b *Board) BringToFront(ids ...string) {
	front := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := b.Elements[id]; ok {
			front[id] = true
		}
	}
	if len(front) == 0 {
		return
	}
	rest := make([]string, 0, len(b.Order))
	top := make([]string, 0, len(front))
	for _, id := range b.Order {
		if front[id] {
			top = append(top, id)
		} else {
			rest = append(rest, id)
		}
	}
	b.Order = append(rest, top...)
}

// HitTest returns the topmost element whose body contains p, or "".
func (b *Board) HitTest(p engine.Vec2) string {
	for i := len(b.Order) - 1; i >= 0; i-- {
		el, ok := b.Elements[b.Order[i]]
		if ok && el.Transform.Contains(p) {
			return el.ID
		}
	}
	return ""
}

// Bounds returns the union of the bounding rects of ids.
func (b *Board) Bounds(ids ...string) engine.Rect {
	var r engine.Rect
	for _, id := range ids {
		if el, ok := b.Elements[id]; ok {
			r = r.Union(el.Transform.Bounds())
		}
	}
	return r
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	c.Elements = make(map[string]*Element, len(b.Elements))
	for id, el := range b.Elements {
		cp := *el
		c.Elements[id] = &cp
	}
	c.Order = append([]string(nil), b.Order...)
	return &c
}

// Touch marks the board as modified.
func (b *Board) Touch() { b.touch() }

func (b *Board) touch() {
	b.UpdatedAt = time.Now().UTC()
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
