// Package config loads training hyperparameters from YAML, the way
// reinforcement.FromYaml did, and folds the CLI's left-to-right positional
// tokens (spec §6) into a Build the harness can wire an Agent from.
package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the raw YAML envelope: a discriminator plus an arbitrary
// definition blob, re-marshalled into TrainingConfig below. Kept because
// viper's own struct-tag unmarshalling doesn't round-trip cleanly through a
// second, more specific struct without going back through yaml.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// HyperParameter is one named floating-point training knob.
type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// TrainingConfig holds every hyperparameter this harness's learners,
// selectors and agent loop consult, plus an optional training deadline.
type TrainingConfig struct {
	HyperParams      []HyperParameter  `mapstructure:"hyperParams" yaml:"hyperParams"`
	Algorithm        map[string]string `mapstructure:"algorithm" yaml:"algorithm"`
	TrainingDeadline map[string]string `mapstructure:"trainingDeadline" yaml:"trainingDeadline"`
}

// GetHyperParamOrDefault returns the named hyperparameter's value, or
// defaultVal if it was never set in the YAML file.
func (cfg *TrainingConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// WithTrainingDeadline returns a context bounded by the configured training
// deadline, if any, else one cancellable only by its CancelFunc.
func (cfg *TrainingConfig) WithTrainingDeadline(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrainingDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads path through viper (for its directory/basename-aware config
// file discovery), then re-marshals the generic "def" blob into a
// TrainingConfig via yaml.v3: a two-pass decode so the outer envelope (kind,
// then a kind-specific body) can be read before its body's shape is known.
func FromYaml(path string) (*TrainingConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	inner := &TrainingConfig{}
	if err := yaml.Unmarshal(spec, inner); err != nil {
		return nil, err
	}

	return inner, nil
}

// Default hyperparameter values used when neither a YAML file nor the CLI
// token table overrides them.
const (
	DefaultDiscountFactor    = 0.9
	DefaultEligibilityFactor = 0.0
	DefaultLearningRate      = 0.3
	DefaultKappa             = 1.0
	DefaultEpsilon           = 0.2
	DefaultTemperature       = 1.0
	DefaultBatchSize         = 10
	DefaultMaxSteps          = 200
	DefaultNumEpisodes       = 1000
	DefaultRolloutLength     = 20
	DefaultNumRollouts       = 5
)

// HyperParameters collects every knob a TrainingConfig can override, seeded
// with the package defaults above.
type HyperParameters struct {
	DiscountFactor    float64
	EligibilityFactor float64
	LearningRate      float64
	Kappa             float64
	Epsilon           float64
	Temperature       float64
	BatchSize         int
	MaxSteps          int
	NumEpisodes       int
	RolloutLength     int
	NumRollouts       int
}

// DefaultHyperParameters returns the package defaults.
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		DiscountFactor:    DefaultDiscountFactor,
		EligibilityFactor: DefaultEligibilityFactor,
		LearningRate:      DefaultLearningRate,
		Kappa:             DefaultKappa,
		Epsilon:           DefaultEpsilon,
		Temperature:       DefaultTemperature,
		BatchSize:         DefaultBatchSize,
		MaxSteps:          DefaultMaxSteps,
		NumEpisodes:       DefaultNumEpisodes,
		RolloutLength:     DefaultRolloutLength,
		NumRollouts:       DefaultNumRollouts,
	}
}

// ApplyTrainingConfig overrides hp's fields with any hyperparameters present
// in cfg, by name; unmentioned fields keep their current value.
func (hp *HyperParameters) ApplyTrainingConfig(cfg *TrainingConfig) {
	if cfg == nil {
		return
	}
	hp.DiscountFactor = cfg.GetHyperParamOrDefault("gamma", hp.DiscountFactor)
	hp.EligibilityFactor = cfg.GetHyperParamOrDefault("lambda", hp.EligibilityFactor)
	hp.LearningRate = cfg.GetHyperParamOrDefault("alpha", hp.LearningRate)
	hp.Kappa = cfg.GetHyperParamOrDefault("kappa", hp.Kappa)
	hp.Epsilon = cfg.GetHyperParamOrDefault("epsilon", hp.Epsilon)
	hp.Temperature = cfg.GetHyperParamOrDefault("temperature", hp.Temperature)
	hp.BatchSize = int(cfg.GetHyperParamOrDefault("batchSize", float64(hp.BatchSize)))
	hp.MaxSteps = int(cfg.GetHyperParamOrDefault("maxSteps", float64(hp.MaxSteps)))
	hp.NumEpisodes = int(cfg.GetHyperParamOrDefault("numEpisodes", float64(hp.NumEpisodes)))
	hp.RolloutLength = int(cfg.GetHyperParamOrDefault("rolloutLength", float64(hp.RolloutLength)))
	hp.NumRollouts = int(cfg.GetHyperParamOrDefault("numRollouts", float64(hp.NumRollouts)))
}
