package model

import "testing"

func TestPathPlan_Advance(t *testing.T) {
	goal := Vec2{X: 10, Y: 0}
	plan := NewPathPlan(goal, []Vec2{
		{X: 2, Y: 0},
		{X: 5, Y: 0},
		{X: 10, Y: 0},
	})

	if plan.Exhausted() {
		t.Fatal("fresh plan should not be exhausted")
	}
	if got := plan.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	// Индекс движется только вперёд
	seen := make([]Vec2, 0, 3)
	for {
		wp, ok := plan.Current()
		if !ok {
			break
		}
		seen = append(seen, wp)
		plan.Advance()
	}

	if len(seen) != 3 {
		t.Fatalf("visited %d waypoints, want 3", len(seen))
	}
	if seen[0] != (Vec2{X: 2, Y: 0}) || seen[2] != goal {
		t.Errorf("waypoint order = %+v", seen)
	}
	if !plan.Exhausted() {
		t.Error("plan should be exhausted after visiting all waypoints")
	}
	if got := plan.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}

	// Advance после исчерпания ничего не ломает
	plan.Advance()
	if _, ok := plan.Current(); ok {
		t.Error("Current() ok after exhaustion")
	}
}

func TestPathPlan_Empty(t *testing.T) {
	// Пустой (но не nil) план означает "уже у цели"
	plan := NewPathPlan(Vec2{X: 1, Y: 1}, []Vec2{})

	if !plan.Exhausted() {
		t.Error("empty plan should be exhausted immediately")
	}
	if _, ok := plan.Current(); ok {
		t.Error("Current() ok on empty plan")
	}
	if got := plan.Goal(); got != (Vec2{X: 1, Y: 1}) {
		t.Errorf("Goal() = %+v, want {1 1}", got)
	}
}

func TestPatrolRoute_Wrap(t *testing.T) {
	route, err := NewPatrolRoute("ring", []Vec2{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	})
	if err != nil {
		t.Fatalf("NewPatrolRoute() error = %v", err)
	}

	if got := route.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if got := route.First(); got != (Vec2{X: 0, Y: 0}) {
		t.Errorf("First() = %+v, want {0 0}", got)
	}

	tests := []struct {
		idx  int
		want int
	}{
		{idx: 0, want: 1},
		{idx: 1, want: 2},
		{idx: 2, want: 0}, // замыкание кольца
	}
	for _, tt := range tests {
		if got := route.NextIndex(tt.idx); got != tt.want {
			t.Errorf("NextIndex(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}
}

func TestPatrolRoute_Empty(t *testing.T) {
	if _, err := NewPatrolRoute("empty", nil); err == nil {
		t.Error("NewPatrolRoute() with no points should fail")
	}
}
