package testutil

import (
	"fmt"

	"github.com/jungle0618/warden/internal/model"
)

// MockMover — кинематический мувер для unit тестов. Не требует физического
// движка: интегрирует позицию по скорости на каждом Step.
type MockMover struct {
	pos model.Vec2
	vel model.Vec2

	// Blocked имитирует упор в стену: физика гасит скорость,
	// позиция перестаёт меняться.
	Blocked bool
}

// NewMockMover создаёт мувер в заданной позиции.
func NewMockMover(pos model.Vec2) *MockMover {
	return &MockMover{pos: pos}
}

// SetVelocity запоминает командную скорость.
func (m *MockMover) SetVelocity(v model.Vec2) {
	m.vel = v
}

// Velocity возвращает скорость после "разрешения контактов":
// ноль, если мувер заблокирован.
func (m *MockMover) Velocity() model.Vec2 {
	if m.Blocked {
		return model.Vec2{}
	}
	return m.vel
}

// Position возвращает текущую позицию.
func (m *MockMover) Position() model.Vec2 {
	return m.pos
}

// SetPosition телепортирует мувер (для подготовки сцены в тестах).
func (m *MockMover) SetPosition(p model.Vec2) {
	m.pos = p
}

// Step интегрирует позицию за dt секунд.
func (m *MockMover) Step(dt float64) {
	if m.Blocked {
		return
	}
	m.pos = m.pos.Add(m.vel.Scale(dt))
}

// MockTarget — управляемая цель для тестов восприятия и боя.
type MockTarget struct {
	Pos    model.Vec2
	Stance model.Posture
	Armed  bool
}

func (t *MockTarget) Position() model.Vec2   { return t.Pos }
func (t *MockTarget) Posture() model.Posture { return t.Stance }
func (t *MockTarget) IsArmed() bool          { return t.Armed }

// MockPathService — сервис путей с инъекцией через closure.
// Без Fn возвращает путь из единственной точки — самой цели.
type MockPathService struct {
	Fn    func(start, goal model.Vec2) []model.Vec2
	Calls int
}

func (s *MockPathService) FindPath(start, goal model.Vec2) []model.Vec2 {
	s.Calls++
	if s.Fn == nil {
		return []model.Vec2{goal}
	}
	return s.Fn(start, goal)
}

// MockSweep — проверка прямой видимости для движения.
type MockSweep struct {
	Clear bool
	Calls int
}

func (s *MockSweep) CanMoveDirect(from, to model.Vec2, radius float64) bool {
	s.Calls++
	return s.Clear
}

// MockOccluder — проверка перекрытия линии зрения.
// Без Fn линия всегда свободна.
type MockOccluder struct {
	Fn    func(from, to model.Vec2, posture model.Posture) bool
	Calls int
}

func (o *MockOccluder) Occluded(from, to model.Vec2, posture model.Posture) bool {
	o.Calls++
	if o.Fn == nil {
		return false
	}
	return o.Fn(from, to, posture)
}

// MockThreat — источник уровня угрозы с прямым управлением из теста.
type MockThreat struct {
	Tier model.ThreatTier
}

func (m *MockThreat) CurrentTier() model.ThreatTier {
	return m.Tier
}

// MockRegion — классификатор охраняемых регионов.
// Без Fn ни одна точка не охраняется.
type MockRegion struct {
	Fn func(p model.Vec2) bool
}

func (m *MockRegion) IsGuardRegion(p model.Vec2) bool {
	if m.Fn == nil {
		return false
	}
	return m.Fn(p)
}

// MockResolver — записывает вызовы разрешения атак.
type MockResolver struct {
	Calls      int
	LastTarget model.Target
}

func (r *MockResolver) ResolveAttack(attacker *model.Agent, target model.Target) {
	r.Calls++
	r.LastTarget = target
}

// NewTestAgent создаёт агента с MockMover в заданной позиции.
func NewTestAgent(id uint32, kind model.AgentKind, pos model.Vec2) (*model.Agent, *MockMover) {
	mover := NewMockMover(pos)
	agent := model.NewAgent(id, fmt.Sprintf("agent-%d", id), kind, mover)
	return agent, mover
}
