package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jungle0618/warden/internal/scenario"
)

// ScenarioRepository handles scenario persistence.
//
// Save is a full replace: the previous version of the scenario and all of
// its child rows are dropped inside one transaction. Nothing outside this
// package references scenario_id, so the key changing on save is fine.
type ScenarioRepository struct {
	pool *pgxpool.Pool
}

// NewScenarioRepository creates a new scenario repository.
func NewScenarioRepository(pool *pgxpool.Pool) *ScenarioRepository {
	return &ScenarioRepository{pool: pool}
}

// Save stores the scenario under its name, replacing any previous version.
// The scenario is validated before anything is written.
func (r *ScenarioRepository) Save(ctx context.Context, sc *scenario.Scenario) error {
	if sc == nil {
		return errors.New("store: nil scenario")
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("validating scenario %q: %w", sc.Name, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("Scenario save rollback failed", "scenario", sc.Name, "error", err)
		}
	}()

	if err := r.saveTx(ctx, tx, sc); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing scenario %q: %w", sc.Name, err)
	}
	return nil
}

func (r *ScenarioRepository) saveTx(ctx context.Context, tx pgx.Tx, sc *scenario.Scenario) error {
	// Child rows cascade with the parent.
	if _, err := tx.Exec(ctx, `DELETE FROM scenarios WHERE name = $1`, sc.Name); err != nil {
		return fmt.Errorf("deleting previous scenario %q: %w", sc.Name, err)
	}

	var protX, protY *float64
	if p := sc.Escape.Protector; p != nil {
		protX, protY = &p.X, &p.Y
	}

	var scenarioID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO scenarios (name, zone_width, zone_height,
		       grid_origin_x, grid_origin_y, grid_width, grid_height, grid_cell_size,
		       extraction_x, extraction_y, protector_x, protector_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING scenario_id`,
		sc.Name, sc.Zone.Width, sc.Zone.Height,
		sc.Grid.OriginX, sc.Grid.OriginY, sc.Grid.Width, sc.Grid.Height, sc.Grid.CellSize,
		sc.Escape.Extraction.X, sc.Escape.Extraction.Y, protX, protY,
	).Scan(&scenarioID)
	if err != nil {
		return fmt.Errorf("inserting scenario %q: %w", sc.Name, err)
	}

	for _, o := range sc.Obstacles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO scenario_obstacles (scenario_id, kind, min_x, min_y, max_x, max_y)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			scenarioID, o.Kind, o.MinX, o.MinY, o.MaxX, o.MaxY,
		); err != nil {
			return fmt.Errorf("inserting obstacle: %w", err)
		}
	}

	for _, rt := range sc.Routes {
		var routeID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO scenario_routes (scenario_id, name)
			VALUES ($1, $2)
			RETURNING route_id`,
			scenarioID, rt.Name,
		).Scan(&routeID)
		if err != nil {
			return fmt.Errorf("inserting route %q: %w", rt.Name, err)
		}
		for i, p := range rt.Points {
			if _, err := tx.Exec(ctx, `
				INSERT INTO scenario_route_points (route_id, ordinal, x, y)
				VALUES ($1, $2, $3, $4)`,
				routeID, i, p.X, p.Y,
			); err != nil {
				return fmt.Errorf("inserting route %q point %d: %w", rt.Name, i, err)
			}
		}
	}

	for _, rg := range sc.Regions {
		var regionID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO scenario_regions (scenario_id, name)
			VALUES ($1, $2)
			RETURNING region_id`,
			scenarioID, rg.Name,
		).Scan(&regionID)
		if err != nil {
			return fmt.Errorf("inserting region %q: %w", rg.Name, err)
		}
		for i, v := range rg.Vertices {
			if _, err := tx.Exec(ctx, `
				INSERT INTO scenario_region_vertices (region_id, ordinal, x, y)
				VALUES ($1, $2, $3, $4)`,
				regionID, i, v.X, v.Y,
			); err != nil {
				return fmt.Errorf("inserting region %q vertex %d: %w", rg.Name, i, err)
			}
		}
	}

	for _, sp := range sc.Spawns {
		if _, err := tx.Exec(ctx, `
			INSERT INTO scenario_spawns (scenario_id, name, kind, archetype, x, y, route)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			scenarioID, sp.Name, sp.Kind, sp.Archetype, sp.Position.X, sp.Position.Y, sp.Route,
		); err != nil {
			return fmt.Errorf("inserting spawn %q: %w", sp.Name, err)
		}
	}

	return nil
}

// Load retrieves a scenario by name.
// Returns nil, nil if no scenario with that name exists.
func (r *ScenarioRepository) Load(ctx context.Context, name string) (*scenario.Scenario, error) {
	var (
		sc           scenario.Scenario
		scenarioID   int64
		protX, protY *float64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT scenario_id, name, zone_width, zone_height,
		       grid_origin_x, grid_origin_y, grid_width, grid_height, grid_cell_size,
		       extraction_x, extraction_y, protector_x, protector_y
		FROM scenarios WHERE name = $1`, name,
	).Scan(&scenarioID, &sc.Name, &sc.Zone.Width, &sc.Zone.Height,
		&sc.Grid.OriginX, &sc.Grid.OriginY, &sc.Grid.Width, &sc.Grid.Height, &sc.Grid.CellSize,
		&sc.Escape.Extraction.X, &sc.Escape.Extraction.Y, &protX, &protY)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying scenario %q: %w", name, err)
	}
	if protX != nil && protY != nil {
		sc.Escape.Protector = &scenario.Point{X: *protX, Y: *protY}
	}

	if sc.Obstacles, err = r.loadObstacles(ctx, scenarioID); err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	if sc.Routes, err = r.loadRoutes(ctx, scenarioID); err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	if sc.Regions, err = r.loadRegions(ctx, scenarioID); err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	if sc.Spawns, err = r.loadSpawns(ctx, scenarioID); err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}

	// Руками отредактированная база не должна уронить симуляцию молча.
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validating stored scenario %q: %w", name, err)
	}
	return &sc, nil
}

// List returns the names of all stored scenarios.
func (r *ScenarioRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning scenario name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenario names: %w", err)
	}
	return names, nil
}

// Delete removes a scenario and all of its child rows.
// Deleting a scenario that does not exist is not an error.
func (r *ScenarioRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM scenarios WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting scenario %q: %w", name, err)
	}
	return nil
}

func (r *ScenarioRepository) loadObstacles(ctx context.Context, scenarioID int64) ([]scenario.Obstacle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind, min_x, min_y, max_x, max_y
		FROM scenario_obstacles
		WHERE scenario_id = $1
		ORDER BY obstacle_id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("querying obstacles: %w", err)
	}
	defer rows.Close()

	var obstacles []scenario.Obstacle
	for rows.Next() {
		var o scenario.Obstacle
		if err := rows.Scan(&o.Kind, &o.MinX, &o.MinY, &o.MaxX, &o.MaxY); err != nil {
			return nil, fmt.Errorf("scanning obstacle row: %w", err)
		}
		obstacles = append(obstacles, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating obstacle rows: %w", err)
	}
	return obstacles, nil
}

// loadRoutes relies on validation guaranteeing at least two points per
// route, so the inner join cannot drop a stored route.
func (r *ScenarioRepository) loadRoutes(ctx context.Context, scenarioID int64) ([]scenario.Route, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rt.name, p.x, p.y
		FROM scenario_routes rt
		JOIN scenario_route_points p ON p.route_id = rt.route_id
		WHERE rt.scenario_id = $1
		ORDER BY rt.route_id, p.ordinal`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	var routes []scenario.Route
	for rows.Next() {
		var (
			name string
			p    scenario.Point
		)
		if err := rows.Scan(&name, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scanning route point row: %w", err)
		}
		if len(routes) == 0 || routes[len(routes)-1].Name != name {
			routes = append(routes, scenario.Route{Name: name})
		}
		last := &routes[len(routes)-1]
		last.Points = append(last.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating route point rows: %w", err)
	}
	return routes, nil
}

func (r *ScenarioRepository) loadRegions(ctx context.Context, scenarioID int64) ([]scenario.Region, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rg.name, v.x, v.y
		FROM scenario_regions rg
		JOIN scenario_region_vertices v ON v.region_id = rg.region_id
		WHERE rg.scenario_id = $1
		ORDER BY rg.region_id, v.ordinal`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var regions []scenario.Region
	for rows.Next() {
		var (
			name string
			v    scenario.Point
		)
		if err := rows.Scan(&name, &v.X, &v.Y); err != nil {
			return nil, fmt.Errorf("scanning region vertex row: %w", err)
		}
		if len(regions) == 0 || regions[len(regions)-1].Name != name {
			regions = append(regions, scenario.Region{Name: name})
		}
		last := &regions[len(regions)-1]
		last.Vertices = append(last.Vertices, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating region vertex rows: %w", err)
	}
	return regions, nil
}

func (r *ScenarioRepository) loadSpawns(ctx context.Context, scenarioID int64) ([]scenario.Spawn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, kind, archetype, x, y, route
		FROM scenario_spawns
		WHERE scenario_id = $1
		ORDER BY spawn_id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("querying spawns: %w", err)
	}
	defer rows.Close()

	var spawns []scenario.Spawn
	for rows.Next() {
		var sp scenario.Spawn
		if err := rows.Scan(&sp.Name, &sp.Kind, &sp.Archetype, &sp.Position.X, &sp.Position.Y, &sp.Route); err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		spawns = append(spawns, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}
	return spawns, nil
}
