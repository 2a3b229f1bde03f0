// Package scenario holds the immutable parsed form of a level: obstacle
// footprints, patrol routes, guard regions, spawn entries and the escape
// geometry. Scenarios load from YAML files or from the store; both paths
// end in Parse so validation is shared.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jungle0618/warden/internal/model"
)

// Obstacle kinds.
const (
	ObstacleWall  = "wall"
	ObstacleCover = "cover"
)

// Point is a world position in scenario files.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec2 converts the point to the model value type.
func (p Point) Vec2() model.Vec2 {
	return model.Vec2{X: p.X, Y: p.Y}
}

// Obstacle is one static rectangle.
type Obstacle struct {
	Kind string  `yaml:"kind"`
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// Route is a named closed patrol loop.
type Route struct {
	Name   string  `yaml:"name"`
	Points []Point `yaml:"points"`
}

// Region is a named guard polygon given as an open vertex loop.
type Region struct {
	Name     string  `yaml:"name"`
	Vertices []Point `yaml:"vertices"`
}

// Spawn is one agent entry.
type Spawn struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Archetype string `yaml:"archetype"`
	Position  Point  `yaml:"position"`
	Route     string `yaml:"route"`
}

// Escape is the fugitive escape geometry shared by every fugitive spawn.
type Escape struct {
	Extraction Point  `yaml:"extraction"`
	Protector  *Point `yaml:"protector"`
}

// Zone sizes the active simulation window.
type Zone struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Grid describes the walkability raster the path service searches.
type Grid struct {
	OriginX  float64 `yaml:"origin_x"`
	OriginY  float64 `yaml:"origin_y"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// Scenario is one parsed level.
type Scenario struct {
	Name      string     `yaml:"name"`
	Obstacles []Obstacle `yaml:"obstacles"`
	Routes    []Route    `yaml:"routes"`
	Regions   []Region   `yaml:"regions"`
	Spawns    []Spawn    `yaml:"spawns"`
	Escape    Escape     `yaml:"escape"`
	Zone      Zone       `yaml:"zone"`
	Grid      Grid       `yaml:"grid"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse unmarshals and validates scenario bytes.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks structural invariants. A scenario that fails validation
// must not reach the spawner.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario: missing name")
	}

	for i, o := range s.Obstacles {
		if o.Kind != ObstacleWall && o.Kind != ObstacleCover {
			return fmt.Errorf("scenario: obstacle %d has unknown kind %q", i, o.Kind)
		}
		if o.MinX >= o.MaxX || o.MinY >= o.MaxY {
			return fmt.Errorf("scenario: obstacle %d has a degenerate footprint", i)
		}
	}

	routes := make(map[string]struct{}, len(s.Routes))
	for _, r := range s.Routes {
		if r.Name == "" {
			return errors.New("scenario: route without a name")
		}
		if _, dup := routes[r.Name]; dup {
			return fmt.Errorf("scenario: duplicate route %q", r.Name)
		}
		routes[r.Name] = struct{}{}
		if len(r.Points) < 2 {
			return fmt.Errorf("scenario: route %q needs at least 2 points", r.Name)
		}
	}

	for _, reg := range s.Regions {
		if reg.Name == "" {
			return errors.New("scenario: region without a name")
		}
		if len(reg.Vertices) < 3 {
			return fmt.Errorf("scenario: region %q needs at least 3 vertices", reg.Name)
		}
	}

	for i, sp := range s.Spawns {
		if sp.Name == "" {
			return fmt.Errorf("scenario: spawn %d without a name", i)
		}
		if _, ok := model.ParseAgentKind(sp.Kind); !ok {
			return fmt.Errorf("scenario: spawn %q has unknown kind %q", sp.Name, sp.Kind)
		}
		if sp.Route != "" {
			if _, ok := routes[sp.Route]; !ok {
				return fmt.Errorf("scenario: spawn %q references unknown route %q", sp.Name, sp.Route)
			}
		}
	}

	if s.Zone.Width <= 0 || s.Zone.Height <= 0 {
		return errors.New("scenario: zone extents must be positive")
	}
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 || s.Grid.CellSize <= 0 {
		return errors.New("scenario: grid dimensions must be positive")
	}
	return nil
}

// RouteByName returns the named patrol route.
func (s *Scenario) RouteByName(name string) (Route, bool) {
	for _, r := range s.Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}
