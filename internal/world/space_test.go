package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jungle0618/warden/internal/model"
)

func TestSpace_OcclusionFollowsPostureMask(t *testing.T) {
	// Препятствие [4,5]×[-1,1] ровно между наблюдателем (0,0) и целью (8,0).
	tests := []struct {
		name     string
		obstacle string
		posture  model.Posture
		want     bool
	}{
		{"wall hides standing", "wall", model.PostureStanding, true},
		{"wall hides lowered", "wall", model.PostureLowered, true},
		{"cover ignores standing", "cover", model.PostureStanding, false},
		{"cover hides lowered", "cover", model.PostureLowered, true},
		{"open line standing", "none", model.PostureStanding, false},
		{"open line lowered", "none", model.PostureLowered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpace()
			r := model.Rect{Min: model.Vec2{X: 4, Y: -1}, Max: model.Vec2{X: 5, Y: 1}}
			switch tt.obstacle {
			case "wall":
				s.AddWall(r)
			case "cover":
				s.AddCover(r)
			}

			got := s.Occluded(model.Vec2{X: 0, Y: 0}, model.Vec2{X: 8, Y: 0}, tt.posture)
			assert.Equal(t, tt.want, got, "Occluded through %s at %s", tt.obstacle, tt.posture)
		})
	}
}

func TestSpace_OcclusionClearPastObstacle(t *testing.T) {
	s := NewSpace()
	s.AddWall(model.Rect{Min: model.Vec2{X: 4, Y: -1}, Max: model.Vec2{X: 5, Y: 1}})

	// Линия зрения проходит выше стены
	got := s.Occluded(model.Vec2{X: 0, Y: 3}, model.Vec2{X: 8, Y: 3}, model.PostureStanding)
	assert.False(t, got)
}

func TestSpace_AgentsNeverBlockSight(t *testing.T) {
	s := NewSpace()
	s.AddAgentBody(model.Vec2{X: 4, Y: 0}, 0.5)

	got := s.Occluded(model.Vec2{X: 0, Y: 0}, model.Vec2{X: 8, Y: 0}, model.PostureStanding)
	assert.False(t, got, "a body standing on the sight line is not an obstacle")
}

func TestSpace_CanMoveDirect(t *testing.T) {
	s := NewSpace()
	// Коридор шириной 2 между стеной сверху и укрытием снизу
	s.AddWall(model.Rect{Min: model.Vec2{X: 4, Y: 1}, Max: model.Vec2{X: 5, Y: 3}})
	s.AddCover(model.Rect{Min: model.Vec2{X: 4, Y: -3}, Max: model.Vec2{X: 5, Y: -1}})

	from := model.Vec2{X: 0, Y: 0}
	to := model.Vec2{X: 8, Y: 0}

	assert.True(t, s.CanMoveDirect(from, to, 0.4), "narrow body fits the corridor")
	assert.False(t, s.CanMoveDirect(from, to, 1.3), "wide body clips both sides")
	assert.False(t, s.CanMoveDirect(model.Vec2{X: 0, Y: 2}, model.Vec2{X: 8, Y: 2}, 0.4),
		"line through the wall")
	assert.False(t, s.CanMoveDirect(model.Vec2{X: 0, Y: -2}, model.Vec2{X: 8, Y: -2}, 0.4),
		"cover blocks movement even though standing targets see through it")
}

func TestSpace_StepIntegratesVelocity(t *testing.T) {
	s := NewSpace()
	body := s.AddAgentBody(model.Vec2{X: 1, Y: 1}, 0.3)

	body.SetVelocity(model.Vec2{X: 2, Y: -1})
	for range 10 {
		s.Step(0.05)
	}

	// 0.5 секунды свободного полёта: ни гравитации, ни трения
	pos := body.Position()
	assert.InDelta(t, 2.0, pos.X, 1e-6)
	assert.InDelta(t, 0.5, pos.Y, 1e-6)

	vel := body.Velocity()
	assert.InDelta(t, 2.0, vel.X, 1e-6)
	assert.InDelta(t, -1.0, vel.Y, 1e-6)
}

func TestSpace_WallStopsBody(t *testing.T) {
	s := NewSpace()
	s.AddWall(model.Rect{Min: model.Vec2{X: 4, Y: -2}, Max: model.Vec2{X: 5, Y: 2}})
	body := s.AddAgentBody(model.Vec2{X: 3, Y: 0}, 0.3)

	for range 40 {
		// Команда пишется каждый тик, как это делает координатор
		body.SetVelocity(model.Vec2{X: 2, Y: 0})
		s.Step(0.05)
	}

	pos := body.Position()
	assert.Less(t, pos.X, 4.0, "the wall face must stop the body")
	assert.Greater(t, pos.X, 3.3, "the body must reach the wall, not stall")

	// Фактическая скорость у стены много меньше командной —
	// на этой разнице построен детектор застревания
	assert.Less(t, math.Abs(body.Velocity().X), 0.5)
}

func TestSpace_Counts(t *testing.T) {
	s := NewSpace()
	s.AddWall(model.Rect{Min: model.Vec2{X: 0, Y: 0}, Max: model.Vec2{X: 1, Y: 1}})
	s.AddCover(model.Rect{Min: model.Vec2{X: 2, Y: 0}, Max: model.Vec2{X: 3, Y: 1}})
	b := s.AddAgentBody(model.Vec2{X: 5, Y: 5}, 0.3)

	walls, covers, agents := s.Counts()
	assert.Equal(t, 1, walls)
	assert.Equal(t, 1, covers)
	assert.Equal(t, 1, agents)

	s.RemoveBody(b)
	_, _, agents = s.Counts()
	assert.Equal(t, 0, agents)

	s.RemoveBody(nil) // не паникует
}
