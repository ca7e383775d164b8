package expansion

import "testing"

func TestShouldAnimate(t *testing.T) {
	tests := []struct {
		name      string
		animation RowAnimation
		requested bool
		rows      int
		want      bool
	}{
		{"requested under threshold", RowAnimationFade, true, 3, true},
		{"requested at threshold", RowAnimationFade, true, 10, true},
		{"requested over threshold", RowAnimationFade, true, 11, false},
		{"not requested", RowAnimationFade, false, 1, false},
		{"animation none", RowAnimationNone, true, 1, false},
		{"empty mutation", RowAnimationAutomatic, true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewAnimationOrchestrator(newFakeHost(), DefaultAnimationRowThreshold, tt.animation)
			if got := o.ShouldAnimate(tt.requested, tt.rows); got != tt.want {
				t.Errorf("ShouldAnimate(%t, %d) = %t, want %t", tt.requested, tt.rows, got, tt.want)
			}
		})
	}
}

func TestRunSequencesBeforeBatchAfter(t *testing.T) {
	host := newFakeHost()
	host.deferred = true
	var order []string
	host.events = &order

	o := NewAnimationOrchestrator(host, 2, RowAnimationTop)
	b := o.Run(Mutation{Section: 4, Kind: MutationDelete, Requested: true},
		func() []int {
			order = append(order, "before")
			return []int{1, 2, 3}
		},
		func(b Batch) {
			order = append(order, "after")
		})

	if b.Animated() {
		t.Error("three rows exceed a threshold of two")
	}
	if len(host.batches) != 1 {
		t.Fatalf("expected exactly one batch, got %d", len(host.batches))
	}
	if len(order) != 2 || order[0] != "before" || order[1] != "batch(delete,4,3,false)" {
		t.Fatalf("unexpected order before completion: %v", order)
	}

	host.finish()
	if order[len(order)-1] != "after" {
		t.Errorf("after should run from the completion callback, got %v", order)
	}
}

func TestRowAnimationParse(t *testing.T) {
	for _, a := range []RowAnimation{RowAnimationNone, RowAnimationFade, RowAnimationTop, RowAnimationBottom, RowAnimationAutomatic} {
		got, ok := ParseRowAnimation(a.String())
		if !ok || got != a {
			t.Errorf("ParseRowAnimation(%q) = %v, %t", a.String(), got, ok)
		}
	}
	if _, ok := ParseRowAnimation("wobble"); ok {
		t.Error("unknown animation should not parse")
	}
}
