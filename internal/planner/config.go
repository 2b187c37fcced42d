// Package planner implements the automated base layout planner: site
// selection, road network building, cluster connection, and plan
// maintenance, all bounded per tick.
package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/colonyplan/internal/plan"
)

// Config holds the planner's tunables. Defaults are sensible for a
// 50x50 colony; a YAML file can override any field.
type Config struct {
	ReplanEvery    uint64 `yaml:"replan_every"`     // ticks between planning cycles
	MaintainEvery  uint64 `yaml:"maintain_every"`   // ticks between maintenance sweeps
	DeepSweepEvery uint64 `yaml:"deep_sweep_every"` // ticks between staleness prunes

	PathBudget int `yaml:"path_budget"` // op budget per pathfinding call
	PlainCost  int `yaml:"plain_cost"`
	RoughCost  int `yaml:"rough_cost"`
	RoadCost   int `yaml:"road_cost"`

	ExtractionRadius     int `yaml:"extraction_radius"`
	BufferMaxRadius      int `yaml:"buffer_max_radius"`
	ConduitRadius        int `yaml:"conduit_radius"`
	ConduitInnerRadius   int `yaml:"conduit_inner_radius"`
	DepotMaxRadius       int `yaml:"depot_max_radius"`
	DepotPreferredOffset int `yaml:"depot_preferred_offset"`
	DepotOffsetScale     int `yaml:"depot_offset_scale"`

	MaxConnectorLength   int `yaml:"max_connector_length"`
	MaxConnectorsPerTick int `yaml:"max_connectors_per_tick"`
	MaxClusterPasses     int `yaml:"max_cluster_passes"`

	ExtensionMinDistance int  `yaml:"extension_min_distance"`
	ExtensionRingRadius  int  `yaml:"extension_ring_radius"`
	ExtensionRingMax     int  `yaml:"extension_ring_max"`
	ExtensionRingSearch  bool `yaml:"extension_ring_search"`
	EntranceQuota        int  `yaml:"entrance_quota"`

	PruneAge  uint64 `yaml:"prune_age"`  // unbuilt plan entries older than this are dropped
	UnseenAge uint64 `yaml:"unseen_age"` // whole stores idle this long are discarded

	// Protected lists the facility categories that get a defensive
	// overlay once built, by category name.
	Protected []string `yaml:"protected"`
}

// DefaultConfig returns the built-in tunables.
func DefaultConfig() Config {
	return Config{
		ReplanEvery:    20,
		MaintainEvery:  200,
		DeepSweepEvery: 1000,

		PathBudget: 2000,
		PlainCost:  2,
		RoughCost:  5,
		RoadCost:   1,

		ExtractionRadius:     1,
		BufferMaxRadius:      3,
		ConduitRadius:        3,
		ConduitInnerRadius:   2,
		DepotMaxRadius:       6,
		DepotPreferredOffset: 3,
		DepotOffsetScale:     4,

		MaxConnectorLength:   10,
		MaxConnectorsPerTick: 2,
		MaxClusterPasses:     5,

		ExtensionMinDistance: 2,
		ExtensionRingRadius:  3,
		ExtensionRingMax:     6,
		ExtensionRingSearch:  true,
		EntranceQuota:        8,

		PruneAge:  5000,
		UnseenAge: 50000,

		Protected: []string{"tower", "depot", "buffer"},
	}
}

// LoadConfig reads tunables from a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("planner config %s: %w", path, err)
	}
	return cfg, nil
}

// ProtectedCategories resolves the protect-list names to categories.
// Unknown names are skipped.
func (c Config) ProtectedCategories() []plan.Category {
	var out []plan.Category
	for _, name := range c.Protected {
		for _, cat := range plan.Categories {
			if plan.CategoryName(cat) == name {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}
