package bootstrap

import (
	"fmt"
	"os"

	"github.com/aura-studio/coldstart/signer"
	yaml "gopkg.in/yaml.v2"
)

type yamlBootstrapConfig struct {
	Dependency struct {
		Source  string `yaml:"source"`
		Loader  string `yaml:"loader"`
		Install string `yaml:"install"`
		Default string `yaml:"default"`
		Archive string `yaml:"archive"`
	} `yaml:"dependency"`
	Storage struct {
		Region  string `yaml:"region"`
		Access  string `yaml:"access"`
		Secret  string `yaml:"secret"`
		Token   string `yaml:"token"`
		Expires int64  `yaml:"expires"`
	} `yaml:"storage"`
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlBootstrapConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		if cfg.Dependency.Source != "" {
			o.DownloadSource = cfg.Dependency.Source
		}
		if cfg.Dependency.Loader != "" {
			o.LoaderPath = cfg.Dependency.Loader
		}
		if cfg.Dependency.Install != "" {
			o.InstallPath = cfg.Dependency.Install
		}
		if cfg.Dependency.Default != "" {
			o.DefaultPath = cfg.Dependency.Default
		}
		if cfg.Dependency.Archive != "" {
			o.ArchivePath = cfg.Dependency.Archive
		}

		if cfg.Storage.Region != "" {
			o.Region = cfg.Storage.Region
		}
		if cfg.Storage.Access != "" || cfg.Storage.Secret != "" {
			o.Credentials = signer.Credentials{
				AccessKeyID:     cfg.Storage.Access,
				SecretAccessKey: cfg.Storage.Secret,
				SessionToken:    cfg.Storage.Token,
			}
		}
		if cfg.Storage.Expires != 0 {
			o.Expires = cfg.Storage.Expires
		}

		o.DebugMode = cfg.Mode.Debug
	}), nil
}

// WithConfig parses YAML bytes following bootstrap.yml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("bootstrap.WithConfig: %w", err))
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
			panic(fmt.Errorf("bootstrap.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
