// Package region classifies world positions into named guard regions.
// Ground outside every polygon is safe: hostiles there need another reason
// before force is sanctioned.
package region

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/jungle0618/warden/internal/model"
)

type guardRegion struct {
	name  string
	poly  orb.Polygon
	bound orb.Bound
}

// Classifier answers point-in-guard-region queries. Built once from scenario
// data, read-only afterwards, safe for concurrent use.
type Classifier struct {
	regions []guardRegion
}

// NewClassifier returns an empty classifier: every position is safe ground.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// AddRegion appends a guard polygon given as an open vertex loop in world
// units. The ring is closed automatically.
func (c *Classifier) AddRegion(name string, vertices []model.Vec2) error {
	if len(vertices) < 3 {
		return fmt.Errorf("region: %q needs at least 3 vertices, got %d", name, len(vertices))
	}

	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	ring = append(ring, ring[0])

	poly := orb.Polygon{ring}
	c.regions = append(c.regions, guardRegion{
		name:  name,
		poly:  poly,
		bound: poly.Bound(),
	})
	return nil
}

// IsGuardRegion reports whether pos lies inside any guard polygon.
func (c *Classifier) IsGuardRegion(pos model.Vec2) bool {
	_, ok := c.RegionAt(pos)
	return ok
}

// RegionAt returns the name of the guard region containing pos, if any.
func (c *Classifier) RegionAt(pos model.Vec2) (string, bool) {
	pt := orb.Point{pos.X, pos.Y}
	for _, r := range c.regions {
		// Прямоугольный префильтр перед точным тестом полигона
		if !r.bound.Contains(pt) {
			continue
		}
		if planar.PolygonContains(r.poly, pt) {
			return r.name, true
		}
	}
	return "", false
}

// Count returns the number of loaded guard regions.
func (c *Classifier) Count() int {
	return len(c.regions)
}
