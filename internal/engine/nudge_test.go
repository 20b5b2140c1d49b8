package engine

import "testing"

func TestNudger_Apply(t *testing.T) {
	start := Transform{X: 50, Y: 50, Width: 100, Height: 100}
	n := NewNudger(0, 0)

	tests := []struct {
		name    string
		ev      KeyEvent
		want    Transform
		wantRes NudgeResult
	}{
		{"right", KeyEvent{Key: KeyArrowRight}, Transform{X: 51, Y: 50, Width: 100, Height: 100}, NudgeApplied},
		{"up", KeyEvent{Key: KeyArrowUp}, Transform{X: 50, Y: 49, Width: 100, Height: 100}, NudgeApplied},
		{"coarse left", KeyEvent{Key: KeyArrowLeft, Magnitude: true}, Transform{X: 40, Y: 50, Width: 100, Height: 100}, NudgeApplied},
		{"coarse down", KeyEvent{Key: KeyArrowDown, Magnitude: true}, Transform{X: 50, Y: 60, Width: 100, Height: 100}, NudgeApplied},
		{"fine right", KeyEvent{Key: KeyArrowRight, Fine: true}, Transform{X: 50, Y: 50, Width: 101, Height: 100}, NudgeApplied},
		{"fine coarse up", KeyEvent{Key: KeyArrowUp, Fine: true, Magnitude: true}, Transform{X: 50, Y: 50, Width: 100, Height: 90}, NudgeApplied},
		{"delete", KeyEvent{Key: KeyDelete}, start, NudgeRemove},
		{"backspace", KeyEvent{Key: KeyBackspace}, start, NudgeRemove},
		{"escape", KeyEvent{Key: KeyEscape}, start, NudgeCancel},
		{"other", KeyEvent{Key: KeyUnknown}, start, NudgeIgnored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res := n.Apply(start, tt.ev)
			if got != tt.want || res != tt.wantRes {
				t.Errorf("Apply = %+v, %v; want %+v, %v", got, res, tt.want, tt.wantRes)
			}
		})
	}
}

func TestNudger_FineClampsAtZero(t *testing.T) {
	n := NewNudger(1, 10)
	got, _ := n.Apply(Transform{Width: 4, Height: 4}, KeyEvent{Key: KeyArrowLeft, Fine: true, Magnitude: true})
	if got.Width != 0 {
		t.Errorf("width = %v, want 0", got.Width)
	}
}

func TestNudger_CustomSteps(t *testing.T) {
	n := NewNudger(2, 25)
	got, _ := n.Apply(Transform{}, KeyEvent{Key: KeyArrowRight, Magnitude: true})
	if got.X != 25 {
		t.Errorf("X = %v, want 25", got.X)
	}
}

func TestParseKey(t *testing.T) {
	if ParseKey("ArrowLeft") != KeyArrowLeft || ParseKey("Escape") != KeyEscape {
		t.Error("ParseKey failed on known keys")
	}
	if ParseKey("a") != KeyUnknown {
		t.Error("ParseKey should map unknown keys to KeyUnknown")
	}
}
