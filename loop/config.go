package loop

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlLoopConfig struct {
	Loop struct {
		Max *int64 `yaml:"max"`
	} `yaml:"loop"`
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlLoopConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		// max: 0 is a meaningful setting (exit before any event), so
		// absence is distinguished from zero.
		if cfg.Loop.Max != nil {
			o.MaxIterations = *cfg.Loop.Max
		}
		o.DebugMode = cfg.Mode.Debug
	}), nil
}

// WithConfig parses YAML bytes following loop.yml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("loop.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("loop.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
