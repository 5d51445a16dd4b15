package georef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	// Inputs. ImageList is required; the rest are optional.
	ImageList       string `yaml:"imageList"`
	InputPLY        string `yaml:"inputPLY,omitempty"`
	InputKRTD       string `yaml:"inputKRTD,omitempty"`
	ReferencePoints string `yaml:"referencePoints,omitempty"`

	// GeoOriginFile is both input and output: read when present, written
	// when the run computed a fresh origin.
	GeoOriginFile string `yaml:"geoOriginFile,omitempty"`

	// Outputs. Empty values skip that artifact.
	OutputPLY         string `yaml:"outputPLY,omitempty"`
	OutputPOSDir      string `yaml:"outputPOSDir,omitempty"`
	OutputKRTDDir     string `yaml:"outputKRTDDir,omitempty"`
	OutputGeoJSON     string `yaml:"outputGeoJSON,omitempty"`
	OutputOverviewPNG string `yaml:"outputOverviewPNG,omitempty"`

	// Estimator selection: "umeyama"/"none" and "pca"/"none".
	SimilarityEstimator string `yaml:"similarityEstimator,omitempty"`
	CanonicalEstimator  string `yaml:"canonicalEstimator,omitempty"`
}

// DefaultConfig mirrors the stock tool configuration.
func DefaultConfig() *Config {
	return &Config{
		GeoOriginFile:       "output/geo_origin.txt",
		OutputPLY:           "output/landmarks.ply",
		OutputPOSDir:        "output/pos",
		OutputKRTDDir:       "output/krtd",
		OutputGeoJSON:       "output/scene.geojson",
		OutputOverviewPNG:   "output/overview.png",
		SimilarityEstimator: "umeyama",
		CanonicalEstimator:  "pca",
	}
}

// LoadConfig loads the run configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return config, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate collects every configuration problem instead of stopping at
// the first, so the operator sees all of them at once. An empty slice
// means the configuration is runnable.
func (c *Config) Validate() []error {
	var problems []error

	if c.ImageList == "" {
		problems = append(problems, fmt.Errorf("imageList is required"))
	} else if !fileExists(c.ImageList) {
		problems = append(problems, fmt.Errorf("imageList %s does not exist", c.ImageList))
	}
	if c.InputKRTD != "" && !pathExists(c.InputKRTD) {
		problems = append(problems, fmt.Errorf("inputKRTD %s does not exist", c.InputKRTD))
	}
	if c.InputPLY != "" && !fileExists(c.InputPLY) {
		problems = append(problems, fmt.Errorf("inputPLY %s does not exist", c.InputPLY))
	}
	if c.ReferencePoints != "" && !fileExists(c.ReferencePoints) {
		problems = append(problems, fmt.Errorf("referencePoints %s does not exist", c.ReferencePoints))
	}
	if _, err := SimilarityEstimatorByName(c.SimilarityEstimator); err != nil {
		problems = append(problems, err)
	}
	if _, err := CanonicalEstimatorByName(c.CanonicalEstimator); err != nil {
		problems = append(problems, err)
	}

	return problems
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
