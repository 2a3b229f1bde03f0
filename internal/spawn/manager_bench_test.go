package spawn

import (
	"fmt"
	"testing"

	"github.com/jungle0618/warden/internal/scenario"
)

// benchScenario генерирует двор на n часовых с общим маршрутом.
func benchScenario(n int) *scenario.Scenario {
	sc := &scenario.Scenario{
		Name: "bench-yard",
		Routes: []scenario.Route{
			{Name: "loop", Points: []scenario.Point{
				{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 8}, {X: 0, Y: 8},
			}},
		},
		Zone: scenario.Zone{Width: 30, Height: 20},
		Grid: scenario.Grid{OriginX: -3, OriginY: -3, Width: 16, Height: 16, CellSize: 1},
	}
	for i := 0; i < n; i++ {
		sc.Spawns = append(sc.Spawns, scenario.Spawn{
			Name:      fmt.Sprintf("sentry-%d", i),
			Kind:      "hostile",
			Archetype: "warden",
			Position:  scenario.Point{X: float64(i % 8), Y: float64(i / 8)},
			Route:     "loop",
		})
	}
	return sc
}

func BenchmarkManager_SpawnAll_100(b *testing.B) {
	sc := benchScenario(100)

	b.ReportAllocs()
	for range b.N {
		b.StopTimer()
		mgr, err := NewManager(benchConfig(), newTestDeps(b))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if _, err := mgr.SpawnAll(sc); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkManager_Agent — поиск по ID под мьютексом, O(1).
func BenchmarkManager_Agent(b *testing.B) {
	mgr, err := NewManager(benchConfig(), newTestDeps(b))
	if err != nil {
		b.Fatal(err)
	}
	if _, err := mgr.SpawnAll(benchScenario(200)); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_, _ = mgr.Agent(0x10000001)
	}
}
