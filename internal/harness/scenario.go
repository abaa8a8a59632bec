package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sophon/internal/config"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops/euclid"
)

// Scenario defines one deterministic engine run and what must hold after it.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed seeds the engine's random source.
	Seed int64 `yaml:"seed"`

	// Steps is the number of engine steps to run.
	Steps int `yaml:"steps"`

	// Books lists the op books to register, in order. Empty registers all.
	Books []string `yaml:"books,omitempty"`

	// Config holds overrides decoded over config.Default.
	Config yaml.Node `yaml:"config,omitempty"`

	// Assertions validate the final trace and graph.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the trace or the final graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the op name (used by applied).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected application order (used by applied_order).
	Ops []string `yaml:"ops,omitempty"`

	// NodeType is the node type to count (used by node_count).
	NodeType string `yaml:"node_type,omitempty"`

	// Count is an exact expected count (applied, node_count).
	Count *int `yaml:"count,omitempty"`

	// Min is a lower bound (applied, node_count). Ignored when Count is set.
	Min int `yaml:"min,omitempty"`
}

// Assertion type constants.
const (
	AssertApplied        = "applied"
	AssertAppliedOrder   = "applied_order"
	AssertInvariantsHold = "invariants_hold"
	AssertNodeCount      = "node_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// RunConfig returns the defaults with the scenario's overrides, seed,
// steps and books applied, validated.
func (s *Scenario) RunConfig() (config.Config, error) {
	cfg := config.Default()
	if !s.Config.IsZero() {
		if err := s.Config.Decode(&cfg); err != nil {
			return config.Config{}, fmt.Errorf("config: %w", err)
		}
	}
	cfg.Run.Seed = s.Seed
	cfg.Run.Steps = s.Steps
	cfg.Run.Books = s.Books
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	known := make(map[string]bool)
	for _, b := range euclid.Books() {
		known[b] = true
	}
	for i, b := range s.Books {
		if !known[b] {
			return fmt.Errorf("books[%d]: unknown book %q", i, b)
		}
	}

	if _, err := s.RunConfig(); err != nil {
		return err
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertApplied:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for applied", index)
		}
	case AssertAppliedOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for applied_order", index)
		}
	case AssertInvariantsHold:
	case AssertNodeCount:
		if a.NodeType == "" {
			return fmt.Errorf("assertions[%d]: node_type is required for node_count", index)
		}
		if !hypergraph.NodeType(a.NodeType).Valid() {
			return fmt.Errorf("assertions[%d]: unknown node_type %q", index, a.NodeType)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}

	if a.Count != nil && *a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be >= 0", index)
	}
	if a.Min < 0 {
		return fmt.Errorf("assertions[%d]: min must be >= 0", index)
	}
	return nil
}
