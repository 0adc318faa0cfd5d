// Package config loads and saves yaml model definitions for the CLI: the
// expressions, parameter and input ids, input rows, and error-model
// settings that define a prediction.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/predlab/internal/compile"
	"github.com/san-kum/predlab/internal/predict"
)

const (
	DefaultSigma0 = 1.0
	DefaultCV     = 0.1
)

// Config defines one prediction model.
type Config struct {
	Name   string             `yaml:"name"`
	Exprs  []string           `yaml:"exprs"`
	PIDs   []string           `yaml:"pids"`
	UIDs   []string           `yaml:"uids"`
	Us     [][]float64        `yaml:"us"`
	Consts map[string]float64 `yaml:"consts"`
	P0     []float64          `yaml:"p0"`
	YIDs   []string           `yaml:"yids"`

	// LogParams reparametrizes the built prediction to log space.
	LogParams bool `yaml:"log_params"`

	Error ErrorConfig `yaml:"error_model"`

	// Points are parameter vectors for spectrum commands; defaults to
	// the prediction's p0 when empty.
	Points [][]float64 `yaml:"points"`
}

// ErrorConfig selects the error-bar model.
type ErrorConfig struct {
	Kind   string  `yaml:"kind"`
	Sigma0 float64 `yaml:"sigma0"`
	CV     float64 `yaml:"cv"`
}

// DefaultConfig is the Michaelis-Menten example model.
func DefaultConfig() *Config {
	return &Config{
		Name:  "michaelis",
		Exprs: []string{"V*x/(K+x)"},
		PIDs:  []string{"V", "K"},
		UIDs:  []string{"x"},
		Us:    [][]float64{{1}, {2}, {3}},
		P0:    []float64{1, 1},
		Error: ErrorConfig{Kind: "constant", Sigma0: DefaultSigma0, CV: DefaultCV},
	}
}

// Load reads a yaml config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ErrNoExprs indicates a config without any model expressions.
var ErrNoExprs = errors.New("config: no expressions")

// Build compiles the configured expressions into a Prediction.
func (c *Config) Build() (*predict.Prediction, error) {
	if len(c.Exprs) == 0 {
		return nil, ErrNoExprs
	}
	opts := compile.Options{
		PIDs:   c.PIDs,
		UIDs:   c.UIDs,
		Us:     c.Us,
		Consts: c.Consts,
		P0:     c.P0,
		YIDs:   c.YIDs,
	}

	var (
		pred *predict.Prediction
		err  error
	)
	if len(c.Exprs) == 1 && len(c.UIDs) > 0 {
		pred, err = compile.FromString(c.Exprs[0], opts)
	} else {
		pred, err = compile.FromList(c.Exprs, opts)
	}
	if err != nil {
		return nil, err
	}
	if c.LogParams {
		return pred.InLogParams()
	}
	return pred, nil
}

// ErrorModel resolves the configured error model, applying defaults.
func (c *Config) ErrorModel() (predict.ErrorModel, error) {
	kind, err := predict.ParseErrorModelKind(c.Error.Kind)
	if err != nil {
		return predict.ErrorModel{}, err
	}
	m := predict.ErrorModel{Kind: kind, Sigma0: c.Error.Sigma0, CV: c.Error.CV}
	if m.Sigma0 == 0 {
		m.Sigma0 = DefaultSigma0
	}
	if m.CV == 0 {
		m.CV = DefaultCV
	}
	return m, nil
}

// SpectrumPoints resolves the parameter points for spectrum commands.
func (c *Config) SpectrumPoints(pred *predict.Prediction) [][]float64 {
	if len(c.Points) > 0 {
		return c.Points
	}
	return [][]float64{pred.P0().Values()}
}
