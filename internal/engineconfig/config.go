// Package engineconfig loads the AnalysisConfig the core consumes.
// The core itself never touches YAML or the filesystem; this package is
// the external collaborator that resolves a config file (or defaults)
// into the plain struct every stage component reads.
package engineconfig

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// ComplexityThresholds gates the complexity factor's contribution and
// the T2/T3 tier boundaries.
type ComplexityThresholds struct {
	CyclomaticHigh int `yaml:"cyclomatic_high"`
	CyclomaticT2   int `yaml:"cyclomatic_t2"`
	CyclomaticT3   int `yaml:"cyclomatic_t3"`
}

// ScoringWeights are the base-score weights. Validate rescales them to
// sum to 1.0 when they do not already; only a non-positive sum is rejected.
type ScoringWeights struct {
	Complexity float64 `yaml:"complexity"`
	Coverage   float64 `yaml:"coverage"`
	Structural float64 `yaml:"structural"`
	Size       float64 `yaml:"size"`
	Smell      float64 `yaml:"smell"`
}

// EntropyConfig configures the entropy cache.
type EntropyConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Weight           float64 `yaml:"weight"`
	MinTokens        int     `yaml:"min_tokens"`
	PatternThreshold float64 `yaml:"pattern_threshold"`
}

// RoleClassificationConfig configures the role classifier.
type RoleClassificationConfig struct {
	Enabled                bool    `yaml:"enabled"`
	MinDelegationRatio     float64 `yaml:"min_delegation_ratio"`
	MaxLocalComplexity     int     `yaml:"max_local_complexity"`
	MinCoordinatedFuncs    int     `yaml:"min_coordinated_functions"`
	ScoreReductionFactor   float64 `yaml:"score_reduction_factor"`
}

// GodObjectThresholds configures the pattern detector's god-object detector.
type GodObjectThresholds struct {
	Methods         int `yaml:"methods"`
	Fields          int `yaml:"fields"`
	Responsibilities int `yaml:"responsibilities"`
	Lines           int `yaml:"lines"`
	Complexity      int `yaml:"complexity"`
}

// BoilerplateDetectionConfig configures the pattern detector's boilerplate-trait-impl detector.
type BoilerplateDetectionConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// TierWeights are the multiplicative tier weights applied by the scorer.
type TierWeights struct {
	T1 float64 `yaml:"t1"`
	T2 float64 `yaml:"t2"`
	T3 float64 `yaml:"t3"`
	T4 float64 `yaml:"t4"`
}

// AnalysisConfig is the fully resolved configuration the core consumes,
// matching the external-interface contract.
type AnalysisConfig struct {
	ComplexityThresholds  ComplexityThresholds       `yaml:"complexity_thresholds"`
	ScoringWeights        ScoringWeights             `yaml:"scoring_weights"`
	Entropy               EntropyConfig              `yaml:"entropy"`
	RoleClassification     RoleClassificationConfig   `yaml:"role_classification"`
	GodObjectThresholds    GodObjectThresholds        `yaml:"god_object_thresholds"`
	BoilerplateDetection   BoilerplateDetectionConfig `yaml:"boilerplate_detection"`
	ObserverRegistryNames  []string                   `yaml:"observer_registry_names"`
	OrphanWhitelist        []string                   `yaml:"orphan_whitelist"`
	ExtraEntryPoints       []string                   `yaml:"extra_entry_points"`
	TierWeights            TierWeights                `yaml:"tier_weights"`

	// Discovery excludes, carried in the ambient config even though
	// discovery itself is a collaborator, so one config file
	// drives both.
	DiscoveryExcludes []string `yaml:"discovery_excludes"`
}

// Default returns the documented default configuration.
func Default() *AnalysisConfig {
	return &AnalysisConfig{
		ComplexityThresholds: ComplexityThresholds{
			CyclomaticHigh: 30,
			CyclomaticT2:   15,
			CyclomaticT3:   10,
		},
		ScoringWeights: ScoringWeights{
			Complexity: 1.0,
			Coverage:   1.0,
			Structural: 0.8,
			Size:       0.3,
			Smell:      0.6,
		},
		Entropy: EntropyConfig{
			Enabled:          true,
			Weight:           1.0,
			MinTokens:        20,
			PatternThreshold: 0.7,
		},
		RoleClassification: RoleClassificationConfig{
			Enabled:              true,
			MinDelegationRatio:   0.65,
			MaxLocalComplexity:   5,
			MinCoordinatedFuncs:  3,
			ScoreReductionFactor: 0.30,
		},
		GodObjectThresholds: GodObjectThresholds{
			Methods:          20,
			Fields:           15,
			Responsibilities: 5,
			Lines:            1000,
			Complexity:       200,
		},
		BoilerplateDetection: BoilerplateDetectionConfig{
			Enabled:       true,
			MinConfidence: 0.70,
		},
		ObserverRegistryNames: []string{"listeners", "handlers", "observers", "callbacks", "subscribers", "delegates"},
		OrphanWhitelist:       nil,
		ExtraEntryPoints:      nil,
		TierWeights: TierWeights{
			T1: 1.5,
			T2: 1.0,
			T3: 0.7,
			T4: 0.3,
		},
		DiscoveryExcludes: nil,
	}
}

const weightSumTolerance = 0.01

// Load reads an AnalysisConfig from path, falling back to defaults for
// any unset section, and validates it. An empty path returns the
// defaults unmodified.
func Load(path string) (*AnalysisConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &debt.ConfigError{Field: "path", Reason: err.Error()}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &debt.ConfigError{Field: "yaml", Reason: err.Error()}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the weight-sum invariant and rejects
// nonsensical thresholds. Scoring weights that don't sum to 1.0 within
// tolerance are normalized rather than rejected, per the documented rule ("must
// normalize otherwise").
func Validate(cfg *AnalysisConfig) error {
	w := &cfg.ScoringWeights
	sum := w.Complexity + w.Coverage + w.Structural + w.Size + w.Smell
	if sum <= 0 {
		return &debt.ConfigError{Field: "scoring_weights", Reason: "weights sum to zero or less"}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		w.Complexity /= sum
		w.Coverage /= sum
		w.Structural /= sum
		w.Size /= sum
		w.Smell /= sum
	}

	if cfg.ComplexityThresholds.CyclomaticT3 > cfg.ComplexityThresholds.CyclomaticT2 {
		return &debt.ConfigError{Field: "complexity_thresholds", Reason: "cyclomatic_t3 must be <= cyclomatic_t2"}
	}
	if cfg.Entropy.MinTokens < 0 {
		return &debt.ConfigError{Field: "entropy.min_tokens", Reason: "must be >= 0"}
	}
	tw := cfg.TierWeights
	if tw.T1 < tw.T2 || tw.T2 < tw.T3 || tw.T3 < tw.T4 {
		return &debt.ConfigError{Field: "tier_weights", Reason: "tier weights must be non-increasing from T1 to T4"}
	}
	return nil
}

func (c *AnalysisConfig) String() string {
	return fmt.Sprintf("AnalysisConfig{complexity_t2=%d, complexity_t3=%d, entropy_enabled=%v}",
		c.ComplexityThresholds.CyclomaticT2, c.ComplexityThresholds.CyclomaticT3, c.Entropy.Enabled)
}
