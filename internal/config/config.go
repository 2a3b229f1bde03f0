package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jungle0618/warden/internal/model"
)

// Sim holds all configuration for the simulation server.
type Sim struct {
	// Simulation
	TickRate    int     `yaml:"tick_rate"` // fixed steps per second
	AgentRadius float64 `yaml:"agent_radius"`
	BaseSpeed   float64 `yaml:"base_speed"` // world units per second at multiplier 1.0

	// Logging
	LogLevel string `yaml:"log_level"`
	AIDebug  bool   `yaml:"ai_debug"`

	// Scenario source: the store wins when a scenario name is set and the
	// database is reachable, else the YAML file.
	ScenarioPath string `yaml:"scenario_path"`
	ScenarioName string `yaml:"scenario_name"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Combat
	MinDamage int32 `yaml:"min_damage"`
	MaxDamage int32 `yaml:"max_damage"`

	// Threat decay
	ThreatQuietPeriod float64 `yaml:"threat_quiet_period"` // seconds

	// Archetypes are the named tuning profiles scenario spawns reference.
	Archetypes map[string]Archetype `yaml:"archetypes"`
}

// Archetype is one agent tuning profile.
type Archetype struct {
	Health int32 `yaml:"health"`

	// Senses
	ViewRange     float64 `yaml:"view_range"`
	ViewAngleDeg  float64 `yaml:"view_angle_deg"` // full cone width, degrees
	NearRadius    float64 `yaml:"near_radius"`
	SenseInterval float64 `yaml:"sense_interval"` // seconds
	FaceOnSight   bool    `yaml:"face_on_sight"`

	// Decisions
	DecideInterval float64 `yaml:"decide_interval"` // seconds, jittered per agent
	AlertDuration  float64 `yaml:"alert_duration"`
	SearchDuration float64 `yaml:"search_duration"`
	MemoryDwell    float64 `yaml:"memory_dwell"`
	GiveUpRadius   float64 `yaml:"give_up_radius"`

	// Movement, multipliers over the base speed
	PatrolSpeed float64 `yaml:"patrol_speed"`
	ChaseSpeed  float64 `yaml:"chase_speed"`
	SearchSpeed float64 `yaml:"search_speed"`
	ReturnSpeed float64 `yaml:"return_speed"`
	EscapeSpeed float64 `yaml:"escape_speed"`

	// Combat
	AttackCooldown float64 `yaml:"attack_cooldown"` // seconds
	AttackReach    float64 `yaml:"attack_reach"`
	Implement      string  `yaml:"implement"` // carried tool name, empty = none
	ImplementReach float64 `yaml:"implement_reach"`
	Armed          bool    `yaml:"armed"`

	// Fugitive triggers
	EscapeOnSight   bool   `yaml:"escape_on_sight"`
	EscapeAtTier    string `yaml:"escape_at_tier"` // empty disables
	ViaProtector    bool   `yaml:"via_protector"`
	ProtectorAtTier string `yaml:"protector_at_tier"` // empty disables
}

// EscapeTier parses the escape trigger tier. Empty disables the trigger.
func (a Archetype) EscapeTier() (model.ThreatTier, error) {
	if a.EscapeAtTier == "" {
		return model.TierCalm, nil
	}
	return model.ParseThreatTier(a.EscapeAtTier)
}

// ProtectorTier parses the protector routing tier. Empty disables it.
func (a Archetype) ProtectorTier() (model.ThreatTier, error) {
	if a.ProtectorAtTier == "" {
		return model.TierCalm, nil
	}
	return model.ParseThreatTier(a.ProtectorAtTier)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// TickInterval returns the fixed simulation step in seconds.
func (s Sim) TickInterval() float64 {
	return 1.0 / float64(s.TickRate)
}

// DefaultSim returns the Sim config with sensible defaults: a 20 Hz loop and
// the two stock archetypes every bundled scenario references.
func DefaultSim() Sim {
	return Sim{
		TickRate:          20,
		AgentRadius:       0.3,
		BaseSpeed:         2.0,
		LogLevel:          "info",
		ScenarioPath:      "scenarios/holding_yard.yaml",
		MinDamage:         2,
		MaxDamage:         5,
		ThreatQuietPeriod: 20,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "warden",
			Password: "warden",
			DBName:   "warden",
			SSLMode:  "disable",
		},
		Archetypes: map[string]Archetype{
			"warden": {
				Health:         20,
				ViewRange:      8,
				ViewAngleDeg:   110,
				NearRadius:     2,
				SenseInterval:  0.15,
				FaceOnSight:    true,
				DecideInterval: 0.4,
				AlertDuration:  4,
				SearchDuration: 3,
				MemoryDwell:    6,
				GiveUpRadius:   18,
				PatrolSpeed:    0.6,
				ChaseSpeed:     1.0,
				SearchSpeed:    0.8,
				ReturnSpeed:    0.7,
				AttackCooldown: 1.2,
				AttackReach:    1.2,
				Implement:      "pike",
				ImplementReach: 1.8,
				Armed:          true,
			},
			"captive": {
				Health:          10,
				ViewRange:       6,
				ViewAngleDeg:    140,
				NearRadius:      1.5,
				SenseInterval:   0.2,
				DecideInterval:  0.5,
				EscapeSpeed:     1.1,
				EscapeOnSight:   true,
				EscapeAtTier:    "wary",
				ProtectorAtTier: "hunted",
			},
			// Нарушителем управляет внешний хост: профиль задаёт только
			// здоровье и видимое вооружение.
			"raider": {
				Health:         30,
				Implement:      "crowbar",
				ImplementReach: 1.0,
				Armed:          true,
			},
		},
	}
}

// LoadSim loads the simulation config from a YAML file. A missing file
// returns the defaults; a present file is merged over them, so partial
// configs and extra archetypes both work.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the simulation cannot run without.
func (s Sim) Validate() error {
	if s.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", s.TickRate)
	}
	if s.AgentRadius <= 0 {
		return fmt.Errorf("agent_radius must be positive, got %v", s.AgentRadius)
	}
	if s.BaseSpeed <= 0 {
		return fmt.Errorf("base_speed must be positive, got %v", s.BaseSpeed)
	}
	if s.MinDamage < 1 || s.MaxDamage < s.MinDamage {
		return fmt.Errorf("invalid damage range [%d, %d]", s.MinDamage, s.MaxDamage)
	}
	for name, a := range s.Archetypes {
		if _, err := a.EscapeTier(); err != nil {
			return fmt.Errorf("archetype %q: escape_at_tier: %w", name, err)
		}
		if _, err := a.ProtectorTier(); err != nil {
			return fmt.Errorf("archetype %q: protector_at_tier: %w", name, err)
		}
	}
	return nil
}
