package pathgrid

import (
	"container/heap"
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/jungle0618/warden/internal/model"
)

// defaultIterationCap bounds one search. A fully explored 100×100 grid is
// 10k expansions; anything far past that is a degenerate query.
const defaultIterationCap = 20000

// LineCaster reports whether a radius-wide straight segment is free of
// blocking geometry. Satisfied by world.Space.
type LineCaster interface {
	CanMoveDirect(from, to model.Vec2, radius float64) bool
}

// Service runs A* over the grid and smooths the result. A nil path means
// the goal is unreachable; an empty non-nil path means start and goal share
// a cell. Searches allocate their own state, so the service is safe for
// concurrent use once the grid is built.
type Service struct {
	grid    *Grid
	caster  LineCaster
	radius  float64
	iterCap int
}

// NewService wraps a built grid in a path service.
func NewService(grid *Grid) (*Service, error) {
	if grid == nil {
		return nil, errors.New("pathgrid: nil grid")
	}
	return &Service{grid: grid, iterCap: defaultIterationCap}, nil
}

// SetLineCaster enables path smoothing: waypoints a body of the given radius
// can skip in a straight sweep are dropped.
func (s *Service) SetLineCaster(c LineCaster, radius float64) {
	s.caster = c
	s.radius = radius
}

// SetIterationCap bounds a single search. n <= 0 restores the default.
func (s *Service) SetIterationCap(n int) {
	if n <= 0 {
		n = defaultIterationCap
	}
	s.iterCap = n
}

// FindPath searches a waypoint chain from start to goal. The returned path
// holds intermediate cell centers and ends at the exact goal position.
func (s *Service) FindPath(start, goal model.Vec2) []model.Vec2 {
	sx, sy := s.grid.CellAt(start)
	gx, gy := s.grid.CellAt(goal)

	if !s.grid.Walkable(gx, gy) {
		return nil
	}
	if sx == gx && sy == gy {
		// Уже в клетке цели
		return []model.Vec2{}
	}
	if !s.grid.Walkable(sx, sy) {
		// Старт прижат к раздутому футпринту препятствия: ищем от соседа
		sx, sy = s.nearestWalkable(sx, sy)
		if sx < 0 {
			return nil
		}
	}

	w := s.grid.w
	cells := s.search(sy*w+sx, gy*w+gx)
	if cells == nil {
		return nil
	}

	// Центры промежуточных клеток; последняя точка — точная цель
	pts := make([]model.Vec2, 0, len(cells))
	for _, idx := range cells[1 : len(cells)-1] {
		pts = append(pts, s.grid.Center(idx%w, idx/w))
	}
	pts = append(pts, goal)

	if s.caster != nil {
		pts = s.smooth(start, pts)
	}
	return pts
}

var neighborSteps = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func (s *Service) search(start, goal int) []int {
	w := s.grid.w
	byIdx := make([]*node, w*s.grid.h)
	closed := make([]bool, w*s.grid.h)
	gx, gy := goal%w, goal/w

	first := &node{idx: start, f: octile(start%w, start/w, gx, gy)}
	byIdx[start] = first

	open := openHeap{}
	heap.Push(&open, first)

	for iter := 0; open.Len() > 0; iter++ {
		if iter >= s.iterCap {
			slog.Debug("Path search hit the iteration cap",
				"iterations", iter,
				"capacity", s.iterCap)
			return nil
		}

		cur := heap.Pop(&open).(*node)
		if cur.idx == goal {
			return reconstruct(cur)
		}
		closed[cur.idx] = true

		cx, cy := cur.idx%w, cur.idx/w
		for _, d := range neighborSteps {
			nx, ny := cx+d[0], cy+d[1]
			if !s.grid.Walkable(nx, ny) {
				continue
			}
			// Диагональ не срезает угол: обе ортогональные клетки свободны
			if d[0] != 0 && d[1] != 0 &&
				(!s.grid.Walkable(cx+d[0], cy) || !s.grid.Walkable(cx, cy+d[1])) {
				continue
			}
			nidx := ny*w + nx
			if closed[nidx] {
				continue
			}

			step := 1.0
			if d[0] != 0 && d[1] != 0 {
				step = math.Sqrt2
			}
			tentative := cur.g + step

			nb := byIdx[nidx]
			switch {
			case nb == nil:
				nb = &node{idx: nidx, g: tentative, parent: cur}
				nb.f = tentative + octile(nx, ny, gx, gy)
				byIdx[nidx] = nb
				heap.Push(&open, nb)
			case tentative < nb.g:
				nb.g = tentative
				nb.f = tentative + octile(nx, ny, gx, gy)
				nb.parent = cur
				heap.Fix(&open, nb.heapIdx)
			}
		}
	}
	return nil
}

func (s *Service) nearestWalkable(cx, cy int) (int, int) {
	for _, d := range neighborSteps {
		if s.grid.Walkable(cx+d[0], cy+d[1]) {
			return cx + d[0], cy + d[1]
		}
	}
	return -1, -1
}

// smooth тянет спрямлённые отрезки: от якоря к самой дальней точке,
// достижимой прямым свипом тела.
func (s *Service) smooth(start model.Vec2, pts []model.Vec2) []model.Vec2 {
	if len(pts) < 2 {
		return pts
	}
	out := make([]model.Vec2, 0, len(pts))
	anchor := start
	for i := 0; i < len(pts); {
		next := i
		for k := len(pts) - 1; k > i; k-- {
			if s.caster.CanMoveDirect(anchor, pts[k], s.radius) {
				next = k
				break
			}
		}
		out = append(out, pts[next])
		anchor = pts[next]
		i = next + 1
	}
	return out
}

// octile — допустимая эвристика для сетки с диагоналями, в клетках.
func octile(cx, cy, gx, gy int) float64 {
	dx := math.Abs(float64(cx - gx))
	dy := math.Abs(float64(cy - gy))
	if dx < dy {
		dx, dy = dy, dx
	}
	return dx + (math.Sqrt2-1)*dy
}

func reconstruct(n *node) []int {
	var cells []int
	for cur := n; cur != nil; cur = cur.parent {
		cells = append(cells, cur.idx)
	}
	slices.Reverse(cells)
	return cells
}

type node struct {
	idx     int
	g       float64
	f       float64
	parent  *node
	heapIdx int
}

type openHeap []*node

func (h openHeap) Len() int           { return len(h) }
func (h openHeap) Less(i, j int) bool { return h[i].f < h[j].f }

func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}

func (h *openHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}
