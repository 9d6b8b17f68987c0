package bitmap

import "testing"

func TestObjectMapSetUnset(t *testing.T) {
	m := NewObjectMap()

	if !m.IsEmpty() {
		t.Fatalf("expected fresh ObjectMap to be empty")
	}

	m.Set(4)

	if !m.IsSet(4) {
		t.Fatalf("expected slot 4 to be set")
	}
	if m.IsSet(5) {
		t.Fatalf("expected slot 5 to be unset")
	}
	if m.Len() != 1 {
		t.Fatalf("expected len 1, got %d", m.Len())
	}

	m.Unset(4)

	if !m.IsEmpty() {
		t.Fatalf("expected ObjectMap to be empty after unset")
	}
}

func TestObjectMapReset(t *testing.T) {
	m := NewObjectMap()
	m.Set(1)
	m.Set(2)
	m.Reset()

	if !m.IsEmpty() {
		t.Fatalf("expected ObjectMap to be empty after reset")
	}
}

func TestLineMapSwapMarkValuePreservesBit(t *testing.T) {
	lm := NewLineMap()
	lm.Set(1)

	lm.SwapMarkValue()

	if !lm.IsSet(1) {
		t.Fatalf("expected line 1 to remain set across a swap")
	}
}

func TestLineMapResetPreviousMarksClearsAfterSwap(t *testing.T) {
	lm := NewLineMap()
	lm.Set(1)
	lm.SwapMarkValue()
	lm.ResetPreviousMarks()

	if !lm.IsEmpty() {
		t.Fatalf("expected LineMap to be empty after reset_previous_marks")
	}
}

func TestLineMapResetClearsBoth(t *testing.T) {
	lm := NewLineMap()
	lm.Set(1)
	lm.SwapMarkValue()
	lm.Set(2)
	lm.Reset()

	if !lm.IsEmpty() {
		t.Fatalf("expected LineMap to be empty after full reset")
	}
}
