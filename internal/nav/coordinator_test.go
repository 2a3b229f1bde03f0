package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/testutil"
)

const testDt = 0.05

func newTestCoordinator(t *testing.T, pos model.Vec2, cfg Config) (*Coordinator, *testutil.MockMover, *testutil.MockPathService) {
	t.Helper()
	mover := testutil.NewMockMover(pos)
	paths := &testutil.MockPathService{}
	if cfg.BaseSpeed == 0 {
		cfg.BaseSpeed = 2.0
	}
	c, err := NewCoordinator(mover, paths, cfg)
	require.NoError(t, err)
	return c, mover, paths
}

// run advances the coordinator and the fake physics together.
func run(c *Coordinator, m *testutil.MockMover, steps int) {
	for range steps {
		c.Tick(testDt)
		m.Step(testDt)
	}
}

func TestNewCoordinator_RequiresCollaborators(t *testing.T) {
	mover := testutil.NewMockMover(model.Vec2{})
	paths := &testutil.MockPathService{}

	_, err := NewCoordinator(nil, paths, Config{})
	assert.Error(t, err, "nil mover must fail")

	_, err = NewCoordinator(mover, nil, Config{})
	assert.Error(t, err, "nil path service must fail")
}

func TestCoordinator_ArrivesAtGoal(t *testing.T) {
	c, mover, _ := newTestCoordinator(t, model.Vec2{}, Config{})

	c.MoveToward(model.Vec2{X: 2, Y: 0}, 1.0)
	run(c, mover, 30)

	assert.True(t, c.Arrived())
	assert.Equal(t, ModeIdle, c.Mode())
	assert.Equal(t, model.Vec2{}, mover.Velocity(), "arrival must zero the velocity")
	assert.InDelta(t, 2.0, mover.Position().X, 0.5)

	c.MoveToward(model.Vec2{X: 4, Y: 0}, 1.0)
	assert.False(t, c.Arrived(), "new command must clear the arrived flag")
}

func TestCoordinator_FollowsWaypoints(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{BaseSpeed: 1.0})
	goal := model.Vec2{X: 1, Y: 1}
	paths.Fn = func(_, _ model.Vec2) []model.Vec2 {
		return []model.Vec2{{X: 1, Y: 0}, {X: 1, Y: 1}}
	}

	c.MoveViaPath(goal, 1.0)
	c.Tick(testDt)

	require.Equal(t, 1, paths.Calls)
	v := mover.Velocity()
	assert.InDelta(t, 1.0, v.X, 1e-9, "first leg steers toward the first waypoint")
	assert.InDelta(t, 0.0, v.Y, 1e-9)

	// Подошли к первой точке: координатор переключается на вторую
	mover.SetPosition(model.Vec2{X: 0.99, Y: 0})
	c.Tick(testDt)
	v = mover.Velocity()
	assert.Greater(t, v.Y, 0.9, "second leg steers toward the second waypoint")

	// Откат позиции не возвращает индекс назад
	mover.SetPosition(model.Vec2{})
	c.Tick(testDt)
	v = mover.Velocity()
	assert.Greater(t, v.X, 0.6)
	assert.Greater(t, v.Y, 0.6, "waypoint index must advance monotonically")
	assert.Equal(t, 1, paths.Calls, "no replan without a trigger")
}

func TestCoordinator_ReplanOnGoalDrift(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})

	c.MoveViaPath(model.Vec2{X: 5, Y: 0}, 1.0)
	c.Tick(testDt)
	require.Equal(t, 1, paths.Calls)

	// Небольшой дрейф цели план не трогает
	c.MoveViaPath(model.Vec2{X: 5, Y: 1}, 1.0)
	c.Tick(testDt)
	assert.Equal(t, 1, paths.Calls)

	// Дрейф за порог — перепланирование
	c.MoveViaPath(model.Vec2{X: 5, Y: 3}, 1.0)
	c.Tick(testDt)
	assert.Equal(t, 2, paths.Calls)
	mover.Step(testDt)
}

func TestCoordinator_ReplanBudget(t *testing.T) {
	farGoal := model.Vec2{X: 100, Y: 0}

	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})
	c.MoveViaPath(farGoal, 1.0)
	run(c, mover, 20) // 1.0s < нормального бюджета 2.0s
	assert.Equal(t, 1, paths.Calls)

	c2, mover2, paths2 := newTestCoordinator(t, model.Vec2{}, Config{})
	c2.SetUrgent(true)
	c2.MoveViaPath(farGoal, 1.0)
	run(c2, mover2, 20) // 1.0s > срочного бюджета 0.6s
	assert.Equal(t, 2, paths2.Calls, "urgent budget must replan sooner")
}

func TestCoordinator_DirectShortcut(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})
	sweep := &testutil.MockSweep{Clear: true}
	c.SetSweepCaster(sweep)

	c.MoveViaPath(model.Vec2{X: 5, Y: 0}, 1.0)
	c.Tick(testDt)

	assert.Equal(t, 0, paths.Calls, "clear line must bypass the pathfinder")
	assert.Equal(t, 1, sweep.Calls)
	assert.Greater(t, mover.Velocity().X, 0.0)

	// Линия закрылась: после очередной пробы координатор строит путь
	sweep.Clear = false
	run(c, mover, 8) // 0.4s >= интервала пробы 0.35s
	assert.Equal(t, 1, paths.Calls)
}

func TestCoordinator_NilPathFallsBackToDirect(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})
	paths.Fn = func(_, _ model.Vec2) []model.Vec2 { return nil }

	c.MoveViaPath(model.Vec2{X: 5, Y: 0}, 1.0)
	c.Tick(testDt)

	require.Equal(t, 1, paths.Calls)
	assert.False(t, c.HasPath())
	assert.Greater(t, mover.Velocity().X, 0.0, "no path must fall back to direct steering")

	// Повторная попытка на следующем триггере бюджета
	run(c, mover, 41) // ещё ~2.05s
	assert.GreaterOrEqual(t, paths.Calls, 2)
}

func TestCoordinator_EmptyPathMeansArrived(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})
	paths.Fn = func(_, _ model.Vec2) []model.Vec2 { return []model.Vec2{} }

	c.MoveViaPath(model.Vec2{X: 0.6, Y: 0}, 1.0)
	c.Tick(testDt)

	assert.True(t, c.Arrived(), "empty non-nil path means start and goal share a cell")
	assert.Equal(t, model.Vec2{}, mover.Velocity())
}

func TestCoordinator_StuckOnLowVelocity(t *testing.T) {
	c, mover, _ := newTestCoordinator(t, model.Vec2{}, Config{})
	mover.Blocked = true

	c.MoveViaPath(model.Vec2{X: 10, Y: 0}, 1.0)
	run(c, mover, 12) // 0.6s >= порога 0.5s для следования пути

	assert.True(t, c.IsStuck())

	// Прямое движение терпит дольше
	c2, mover2, _ := newTestCoordinator(t, model.Vec2{}, Config{})
	mover2.Blocked = true
	c2.MoveToward(model.Vec2{X: 10, Y: 0}, 1.0)
	run(c2, mover2, 12)
	assert.False(t, c2.IsStuck(), "0.6s is under the direct threshold")
	run(c2, mover2, 8) // всего 1.0s >= 0.9s
	assert.True(t, c2.IsStuck())
}

func TestCoordinator_StuckOnLowDisplacement(t *testing.T) {
	c, mover, _ := newTestCoordinator(t, model.Vec2{}, Config{})

	c.MoveViaPath(model.Vec2{X: 10, Y: 0}, 1.0)
	// Скорость есть, но агента каждый тик сносит обратно (топчется на месте)
	for range 32 { // 1.6s >= окна 1.5s
		c.Tick(testDt)
		mover.Step(testDt)
		mover.SetPosition(model.Vec2{})
	}

	assert.True(t, c.IsStuck(), "no net displacement must trip the detector")
}

func TestCoordinator_RepeatedCommandKeepsStuckAccounting(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})
	mover.Blocked = true
	goal := model.Vec2{X: 10, Y: 0}

	// Контроллер повторяет команду каждый решающий тик
	for range 12 {
		c.MoveViaPath(goal, 1.0)
		c.Tick(testDt)
		mover.Step(testDt)
	}

	assert.True(t, c.IsStuck(), "re-issuing the same goal must not reset the detector")
	assert.Equal(t, 1, paths.Calls, "re-issuing the same goal must not replan")
}

func TestCoordinator_StopDiscardsPlan(t *testing.T) {
	c, mover, _ := newTestCoordinator(t, model.Vec2{}, Config{})

	c.MoveViaPath(model.Vec2{X: 5, Y: 0}, 1.0)
	c.Tick(testDt)
	require.True(t, c.HasPath())

	c.Stop()

	assert.Equal(t, ModeIdle, c.Mode())
	assert.False(t, c.HasPath())
	assert.Equal(t, model.Vec2{}, mover.Velocity())
}

func TestCoordinator_ClearPlanForcesReplan(t *testing.T) {
	c, mover, paths := newTestCoordinator(t, model.Vec2{}, Config{})

	c.MoveViaPath(model.Vec2{X: 5, Y: 0}, 1.0)
	c.Tick(testDt)
	require.Equal(t, 1, paths.Calls)

	c.ClearPlan()
	assert.False(t, c.HasPath())

	c.Tick(testDt)
	assert.Equal(t, 2, paths.Calls)
	mover.Step(testDt)
}

func TestCoordinator_HeadingFollowsTravel(t *testing.T) {
	c, mover, _ := newTestCoordinator(t, model.Vec2{}, Config{})

	var heading float64
	c.SetHeadingFunc(func(rad float64) { heading = rad })
	assert.False(t, c.OwnsHeading(), "idle coordinator does not own the heading")

	c.MoveToward(model.Vec2{X: 0, Y: 5}, 1.0)
	assert.True(t, c.OwnsHeading())
	c.Tick(testDt)

	assert.InDelta(t, math.Pi/2, heading, 1e-9)
	mover.Step(testDt)

	c.Stop()
	assert.False(t, c.OwnsHeading())
}
