// Package pathgrid implements the grid A* path service the navigation
// coordinator plans with. The grid is a walkability raster built from the
// scenario's obstacle footprints; the service searches it and smooths the
// result against the physics world.
package pathgrid

import (
	"fmt"
	"math"

	"github.com/jungle0618/warden/internal/model"
)

// Grid is the walkability raster. Cells touched by an obstacle footprint are
// unwalkable, everything else is free. Built once per scenario; read-only
// after that, so concurrent searches are safe.
type Grid struct {
	originX float64
	originY float64
	cell    float64
	w, h    int
	blocked []bool
}

// NewGrid allocates a w×h grid of square cells anchored at origin.
func NewGrid(origin model.Vec2, w, h int, cellSize float64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pathgrid: invalid grid size %dx%d", w, h)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("pathgrid: invalid cell size %v", cellSize)
	}
	return &Grid{
		originX: origin.X,
		originY: origin.Y,
		cell:    cellSize,
		w:       w,
		h:       h,
		blocked: make([]bool, w*h),
	}, nil
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (w, h int) {
	return g.w, g.h
}

// BlockRect marks every cell touching the rectangle as unwalkable.
// inflate expands the footprint on all sides so bodies with a radius keep
// clearance from the obstacle face.
func (g *Grid) BlockRect(minX, minY, maxX, maxY, inflate float64) {
	lox := int(math.Floor((minX - inflate - g.originX) / g.cell))
	loy := int(math.Floor((minY - inflate - g.originY) / g.cell))
	hix := int(math.Floor((maxX + inflate - g.originX) / g.cell))
	hiy := int(math.Floor((maxY + inflate - g.originY) / g.cell))

	lox = max(lox, 0)
	loy = max(loy, 0)
	hix = min(hix, g.w-1)
	hiy = min(hiy, g.h-1)

	for cy := loy; cy <= hiy; cy++ {
		for cx := lox; cx <= hix; cx++ {
			g.blocked[cy*g.w+cx] = true
		}
	}
}

// Walkable reports whether the cell exists and is free.
// Out-of-bounds cells count as blocked.
func (g *Grid) Walkable(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= g.w || cy >= g.h {
		return false
	}
	return !g.blocked[cy*g.w+cx]
}

// CellAt converts a world position to cell coordinates. The cell may be
// out of bounds; Walkable handles that.
func (g *Grid) CellAt(p model.Vec2) (cx, cy int) {
	cx = int(math.Floor((p.X - g.originX) / g.cell))
	cy = int(math.Floor((p.Y - g.originY) / g.cell))
	return cx, cy
}

// Center returns the world position of the cell's midpoint.
func (g *Grid) Center(cx, cy int) model.Vec2 {
	return model.Vec2{
		X: g.originX + (float64(cx)+0.5)*g.cell,
		Y: g.originY + (float64(cy)+0.5)*g.cell,
	}
}
