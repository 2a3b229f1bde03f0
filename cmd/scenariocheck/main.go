// Command scenariocheck validates scenario files before they ship or get
// seeded into the catalog.
//
// Each file goes through the same validation the server runs at startup,
// plus the cross-checks validation cannot do alone: spawn archetypes are
// resolved against the config profiles, and every spawn point, route point
// and escape goal is tested against the walkability raster the obstacles
// produce. A goal on a blocked cell is a warning, not an error: the path
// service reroutes to the nearest walkable cell, but the asset is probably
// wrong.
//
// Usage:
//
//	go run ./cmd/scenariocheck [-config config/simserver.yaml] scenarios/*.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jungle0618/warden/internal/config"
	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/scenario"
	"github.com/jungle0618/warden/internal/world/pathgrid"
)

func main() {
	cfgPath := flag.String("config", "config/simserver.yaml", "config with the archetype profiles")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: scenariocheck [-config path] scenario.yaml...")
		os.Exit(2)
	}

	cfg, err := config.LoadSim(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config %s: %v\n", *cfgPath, err)
		os.Exit(1)
	}

	failed := 0
	totalWarnings := 0
	for _, path := range files {
		warnings, err := checkFile(cfg, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		totalWarnings += warnings
		if warnings > 0 {
			fmt.Printf("%s: OK, %d warnings\n", path, warnings)
		} else {
			fmt.Printf("%s: OK\n", path)
		}
	}

	fmt.Printf("\n%d files checked, %d failed, %d warnings\n", len(files), failed, totalWarnings)
	if failed > 0 {
		os.Exit(1)
	}
}

func checkFile(cfg config.Sim, path string) (int, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return 0, err
	}

	fmt.Printf("%s: scenario %q: %d obstacles, %d routes, %d regions, %d spawns\n",
		path, sc.Name, len(sc.Obstacles), len(sc.Routes), len(sc.Regions), len(sc.Spawns))

	for _, sp := range sc.Spawns {
		if _, ok := cfg.Archetypes[sp.Archetype]; !ok {
			return 0, fmt.Errorf("spawn %q references unknown archetype %q", sp.Name, sp.Archetype)
		}
	}

	// Растер собирается ровно как на сервере: укрытия блокируют клетки
	// наравне со стенами.
	grid, err := pathgrid.NewGrid(
		model.Vec2{X: sc.Grid.OriginX, Y: sc.Grid.OriginY},
		sc.Grid.Width, sc.Grid.Height, sc.Grid.CellSize)
	if err != nil {
		return 0, err
	}
	for _, ob := range sc.Obstacles {
		grid.BlockRect(ob.MinX, ob.MinY, ob.MaxX, ob.MaxY, cfg.AgentRadius)
	}

	warnings := 0
	warn := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "WARNING: %s: %s\n", path, fmt.Sprintf(format, args...))
		warnings++
	}

	for _, sp := range sc.Spawns {
		if !walkable(grid, sp.Position.Vec2()) {
			warn("spawn %q sits on a blocked cell at (%.1f, %.1f)", sp.Name, sp.Position.X, sp.Position.Y)
		}
	}
	for _, rt := range sc.Routes {
		for i, p := range rt.Points {
			if !walkable(grid, p.Vec2()) {
				warn("route %q point %d sits on a blocked cell at (%.1f, %.1f)", rt.Name, i, p.X, p.Y)
			}
		}
	}
	if !walkable(grid, sc.Escape.Extraction.Vec2()) {
		warn("extraction point sits on a blocked cell at (%.1f, %.1f)",
			sc.Escape.Extraction.X, sc.Escape.Extraction.Y)
	}
	if sc.Escape.Protector != nil && !walkable(grid, sc.Escape.Protector.Vec2()) {
		warn("protector point sits on a blocked cell at (%.1f, %.1f)",
			sc.Escape.Protector.X, sc.Escape.Protector.Y)
	}

	return warnings, nil
}

func walkable(g *pathgrid.Grid, p model.Vec2) bool {
	return g.Walkable(g.CellAt(p))
}
