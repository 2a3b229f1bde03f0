package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jungle0618/warden/internal/ai"
	"github.com/jungle0618/warden/internal/config"
	"github.com/jungle0618/warden/internal/game/combat"
	"github.com/jungle0618/warden/internal/game/region"
	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/scenario"
	"github.com/jungle0618/warden/internal/sim"
	"github.com/jungle0618/warden/internal/spawn"
	"github.com/jungle0618/warden/internal/store"
	"github.com/jungle0618/warden/internal/world"
	"github.com/jungle0618/warden/internal/world/pathgrid"
)

const ConfigPath = "config/simserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("WARDEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(cfg.AIDebug || logLevel == slog.LevelDebug)

	slog.Info("warden simulation starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate)

	sc, err := loadScenario(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	slog.Info("scenario loaded",
		"name", sc.Name,
		"obstacles", len(sc.Obstacles),
		"routes", len(sc.Routes),
		"regions", len(sc.Regions),
		"spawns", len(sc.Spawns))

	// Static geometry: one physics space for sight and collision, one
	// walkability raster for pathfinding. Both consume the same obstacles.
	space := world.NewSpace()
	grid, err := pathgrid.NewGrid(
		model.Vec2{X: sc.Grid.OriginX, Y: sc.Grid.OriginY},
		sc.Grid.Width, sc.Grid.Height, sc.Grid.CellSize)
	if err != nil {
		return fmt.Errorf("building path grid: %w", err)
	}
	for _, ob := range sc.Obstacles {
		r := model.Rect{Min: model.Vec2{X: ob.MinX, Y: ob.MinY}, Max: model.Vec2{X: ob.MaxX, Y: ob.MaxY}}
		switch ob.Kind {
		case scenario.ObstacleWall:
			space.AddWall(r)
		case scenario.ObstacleCover:
			space.AddCover(r)
		}
		// Укрытия тоже непроходимы, поэтому в растре они равны стенам.
		grid.BlockRect(ob.MinX, ob.MinY, ob.MaxX, ob.MaxY, cfg.AgentRadius)
	}

	paths, err := pathgrid.NewService(grid)
	if err != nil {
		return fmt.Errorf("building path service: %w", err)
	}
	paths.SetLineCaster(space, cfg.AgentRadius)

	regions := region.NewClassifier()
	for _, rg := range sc.Regions {
		verts := make([]model.Vec2, len(rg.Vertices))
		for i, v := range rg.Vertices {
			verts[i] = v.Vec2()
		}
		if err := regions.AddRegion(rg.Name, verts); err != nil {
			return fmt.Errorf("adding region %q: %w", rg.Name, err)
		}
	}

	threat := world.NewThreatTracker(cfg.ThreatQuietPeriod)
	resolver, err := combat.NewResolver(cfg.MinDamage, cfg.MaxDamage, threat)
	if err != nil {
		return fmt.Errorf("creating combat resolver: %w", err)
	}
	perm := ai.NewPermissionRule(regions, threat)
	registry := ai.NewRegistry()

	// The active zone starts on the playfield center. The presentation host
	// re-centers it over its camera through ActiveZone.SetCenter.
	zoneCenter := model.Vec2{
		X: sc.Grid.OriginX + float64(sc.Grid.Width)*sc.Grid.CellSize/2,
		Y: sc.Grid.OriginY + float64(sc.Grid.Height)*sc.Grid.CellSize/2,
	}
	zone := world.NewActiveZone(zoneCenter, sc.Zone.Width, sc.Zone.Height)

	// Everything observable funnels into one event queue the runner drains
	// at the end of each tick.
	events := sim.NewQueue()
	resolver.SetKillFunc(func(attacker *model.Agent, victim model.Target) {
		ev := sim.Event{Type: sim.EventAgentKilled, AttackerID: attacker.ID()}
		if v, ok := victim.(*model.Agent); ok {
			ev.AgentID = v.ID()
		}
		events.Push(ev)
	})

	spawnMgr, err := spawn.NewManager(cfg, spawn.Deps{
		Space:    space,
		Paths:    paths,
		Registry: registry,
		Resolver: resolver,
		Perm:     perm,
		Threat:   threat,
		Zone:     zone,
		OnHostileState: func(agentID uint32, old, new model.HostileState) {
			events.Push(sim.Event{
				Type:    sim.EventStateChanged,
				AgentID: agentID,
				From:    old.String(),
				To:      new.String(),
			})
		},
		OnFugitiveState: func(agentID uint32, old, new model.FugitiveState) {
			events.Push(sim.Event{
				Type:    sim.EventStateChanged,
				AgentID: agentID,
				From:    old.String(),
				To:      new.String(),
			})
		},
		OnExtracted: func(agent *model.Agent) {
			events.Push(sim.Event{Type: sim.EventExtracted, AgentID: agent.ID()})
		},
	})
	if err != nil {
		return fmt.Errorf("creating spawn manager: %w", err)
	}

	count, err := spawnMgr.SpawnAll(sc)
	if err != nil {
		slog.Warn("failed to spawn all agents", "error", err)
	}
	slog.Info("spawn system initialized",
		"agents", count,
		"controllers", registry.Count())

	runner, err := sim.NewRunner(cfg, sim.Deps{
		Registry: registry,
		Space:    space,
		Threat:   threat,
		Pool:     spawnMgr,
		Events:   events,
	})
	if err != nil {
		return fmt.Errorf("creating sim runner: %w", err)
	}

	// Stand-in for the presentation host: drained events go to the log.
	runner.Subscribe(func(ev sim.Event) {
		switch ev.Type {
		case sim.EventAgentKilled:
			slog.Info("agent killed", "agent_id", ev.AgentID, "attacker_id", ev.AttackerID)
		case sim.EventExtracted:
			slog.Info("fugitive extracted", "agent_id", ev.AgentID)
		default:
			slog.Debug("agent state changed", "agent_id", ev.AgentID, "from", ev.From, "to", ev.To)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting simulation loop", "tick_rate", cfg.TickRate)
		if err := runner.Run(gctx); err != nil {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				_, _, agents := space.Counts()
				slog.Info("simulation heartbeat",
					"ticks", runner.Ticks(),
					"sim_time", runner.Now(),
					"agents", agents,
					"controllers", registry.Count(),
					"faults", registry.Faults(),
					"threat", threat.CurrentTier().String())
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// loadScenario resolves the level this host runs. With a scenario name
// configured the database catalog wins; a catalog miss seeds it from the
// YAML file so every host sharing the database converges on one level.
func loadScenario(ctx context.Context, cfg config.Sim) (*scenario.Scenario, error) {
	if cfg.ScenarioName == "" {
		return scenario.Load(cfg.ScenarioPath)
	}

	st, err := store.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := store.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	repo := st.Scenarios()
	sc, err := repo.Load(ctx, cfg.ScenarioName)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", cfg.ScenarioName, err)
	}
	if sc != nil {
		return sc, nil
	}

	sc, err = scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("seeding catalog from %s: %w", cfg.ScenarioPath, err)
	}
	if err := repo.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("seeding scenario %q: %w", sc.Name, err)
	}
	slog.Info("scenario catalog seeded", "name", sc.Name, "from", cfg.ScenarioPath)
	return sc, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
