package config

import (
	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/valuator"
)

// Config is a complete run configuration.
//
// Field names in YAML and CUE files are the snake_case json/yaml tags.
// Fields a file leaves out keep their Default values.
type Config struct {
	Engine   EngineConfig   `yaml:"engine" json:"engine"`
	Step     StepConfig     `yaml:"step" json:"step"`
	Valuator ValuatorConfig `yaml:"valuator" json:"valuator"`
	Run      RunConfig      `yaml:"run" json:"run"`
}

// EngineConfig mirrors engine.Config.
type EngineConfig struct {
	InitialEnergy      float64 `yaml:"initial_energy" json:"initial_energy" validate:"gte=0"`
	InitialMass        float64 `yaml:"initial_mass" json:"initial_mass" validate:"gte=0"`
	C2                 float64 `yaml:"c2" json:"c2" validate:"gt=0"`
	Verbose            bool    `yaml:"verbose" json:"verbose"`
	MinEnergyFloor     float64 `yaml:"min_energy_floor" json:"min_energy_floor" validate:"gte=0"`
	ForceGreedyIfEmpty bool    `yaml:"force_greedy_if_empty" json:"force_greedy_if_empty"`
	Epsilon            float64 `yaml:"epsilon" json:"epsilon" validate:"gte=0,lte=1"`
	TopNExplore        int     `yaml:"top_n_explore" json:"top_n_explore" validate:"gte=1"`
	RecentWindow       int     `yaml:"recent_window" json:"recent_window" validate:"gte=1"`
}

// StepConfig mirrors engine.StepParams.
type StepConfig struct {
	MaxCandidates int     `yaml:"max_candidates" json:"max_candidates" validate:"gte=1"`
	KCommit       int     `yaml:"k_commit" json:"k_commit" validate:"gte=1"`
	ReleaseProb   float64 `yaml:"release_prob" json:"release_prob" validate:"gte=0,lte=1"`
	ReleaseDM     float64 `yaml:"release_dm" json:"release_dm" validate:"gte=0"`
}

// ValuatorConfig holds the affect and consolidation parameters. C2 lives
// in EngineConfig.
type ValuatorConfig struct {
	Alpha   float64          `yaml:"alpha" json:"alpha" validate:"gte=0"`
	Beta    float64          `yaml:"beta" json:"beta" validate:"gte=0"`
	Weights valuator.Weights `yaml:"weights" json:"weights"`
}

// RunConfig holds CLI run settings.
type RunConfig struct {
	Steps       int      `yaml:"steps" json:"steps" validate:"gte=0"`
	Seed        int64    `yaml:"seed" json:"seed"`
	ReportEvery int      `yaml:"report_every" json:"report_every" validate:"gte=0"`
	DB          string   `yaml:"db" json:"db"`
	MetricsAddr string   `yaml:"metrics_addr" json:"metrics_addr" validate:"omitempty,hostname_port"`
	Books       []string `yaml:"books" json:"books" validate:"dive,required"`
}

// Defaults for RunConfig.
const (
	DefaultSteps       = 1000
	DefaultReportEvery = 100
)

// Default returns the documented defaults.
func Default() Config {
	ec := engine.DefaultConfig()
	sp := engine.DefaultStepParams()
	v := valuator.New(ec.C2)
	return Config{
		Engine: EngineConfig{
			InitialEnergy:      ec.InitialEnergy,
			InitialMass:        ec.InitialMass,
			C2:                 ec.C2,
			Verbose:            ec.Verbose,
			MinEnergyFloor:     ec.MinEnergyFloor,
			ForceGreedyIfEmpty: ec.ForceGreedyIfEmpty,
			Epsilon:            ec.Epsilon,
			TopNExplore:        ec.TopNExplore,
			RecentWindow:       ec.RecentWindow,
		},
		Step: StepConfig{
			MaxCandidates: sp.MaxCandidates,
			KCommit:       sp.KCommit,
			ReleaseProb:   sp.ReleaseProb,
			ReleaseDM:     sp.ReleaseDM,
		},
		Valuator: ValuatorConfig{
			Alpha:   v.Alpha,
			Beta:    v.Beta,
			Weights: v.Weights,
		},
		Run: RunConfig{
			Steps:       DefaultSteps,
			ReportEvery: DefaultReportEvery,
		},
	}
}

// ToEngine converts to the engine's construction settings.
func (c Config) ToEngine() engine.Config {
	e := c.Engine
	return engine.Config{
		InitialEnergy:      e.InitialEnergy,
		InitialMass:        e.InitialMass,
		C2:                 e.C2,
		Verbose:            e.Verbose,
		MinEnergyFloor:     e.MinEnergyFloor,
		ForceGreedyIfEmpty: e.ForceGreedyIfEmpty,
		Epsilon:            e.Epsilon,
		TopNExplore:        e.TopNExplore,
		RecentWindow:       e.RecentWindow,
	}
}

// ToStep converts to the engine's per-step parameters.
func (c Config) ToStep() engine.StepParams {
	return engine.StepParams{
		MaxCandidates: c.Step.MaxCandidates,
		KCommit:       c.Step.KCommit,
		ReleaseProb:   c.Step.ReleaseProb,
		ReleaseDM:     c.Step.ReleaseDM,
	}
}

// ToValuator builds the configured valuator.
func (c Config) ToValuator() valuator.Valuator {
	return valuator.Valuator{
		C2:      c.Engine.C2,
		Alpha:   c.Valuator.Alpha,
		Beta:    c.Valuator.Beta,
		Weights: c.Valuator.Weights,
	}
}
