package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"user", NewUserID, PrefixUser},
		{"board", NewBoardID, PrefixBoard},
		{"element", NewElementID, PrefixElement},
		{"op", NewOpID, PrefixOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Errorf("id %q lacks prefix %q", id, tt.prefix)
			}
			if err := Validate(id, tt.prefix); err != nil {
				t.Errorf("Validate(%q) = %v", id, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	if err := Validate(NewBoardID(), PrefixElement); err == nil {
		t.Error("wrong prefix accepted")
	}
	if err := Validate("not an id", PrefixBoard); err == nil {
		t.Error("garbage accepted")
	}
}
