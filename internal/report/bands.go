package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default self-consistency band thresholds when the executor config is
// absent or incomplete.
const (
	DefaultBandLow  = 0.3
	DefaultBandHigh = 0.8
)

// executorConfig mirrors the slice of the executor YAML the report cares
// about.
type executorConfig struct {
	Filtering struct {
		SelfConsistencyBand struct {
			Low  *float64 `yaml:"low"`
			High *float64 `yaml:"high"`
		} `yaml:"self_consistency_band"`
	} `yaml:"filtering"`
}

// LoadFilterBand reads the self-consistency band thresholds from the
// executor YAML config. A missing file yields the (0, 1) open band the
// original filtering pipeline assumes; missing keys fall back to the
// defaults, and inverted thresholds are swapped.
func LoadFilterBand(path string) (low, high float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 1, nil
		}
		return 0, 0, fmt.Errorf("failed to read executor config %s: %w", path, err)
	}

	var cfg executorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return 0, 0, fmt.Errorf("failed to parse executor config %s: %w", path, err)
	}

	low, high = DefaultBandLow, DefaultBandHigh
	if cfg.Filtering.SelfConsistencyBand.Low != nil {
		low = *cfg.Filtering.SelfConsistencyBand.Low
	}
	if cfg.Filtering.SelfConsistencyBand.High != nil {
		high = *cfg.Filtering.SelfConsistencyBand.High
	}
	if low > high {
		low, high = high, low
	}
	return low, high, nil
}

// LoadBandThresholds is the interactive-summary variant of
// LoadFilterBand: a missing executor config falls back to the default
// thresholds rather than the open band.
func LoadBandThresholds(path string) (low, high float64, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return DefaultBandLow, DefaultBandHigh, nil
	}
	return LoadFilterBand(path)
}
