package worker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aura-studio/coldstart/bootstrap"
	"github.com/aura-studio/coldstart/control"
	"github.com/aura-studio/coldstart/loop"
	"github.com/aura-studio/coldstart/sqsevents"
	yaml "gopkg.in/yaml.v2"
)

type yamlWorkerConfig struct {
	Source    string `yaml:"source"`
	Bootstrap any    `yaml:"bootstrap"`
	Loop      any    `yaml:"loop"`
	Control   struct {
		Address string `yaml:"address"`
	} `yaml:"control"`
	SQS struct {
		Request  string `yaml:"request"`
		Response string `yaml:"response"`
		Wait     int32  `yaml:"wait"`
	} `yaml:"sqs"`
}

// WithConfig parses YAML bytes following worker.yml structure. Nested
// bootstrap/loop sections are re-marshaled and handed to their packages'
// own config parsers.
func WithConfig(yamlBytes []byte) Option {
	var cfg yamlWorkerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("worker.WithConfig: %w", err))
	}

	var bootstrapOpt bootstrap.Option
	if cfg.Bootstrap != nil {
		b, err := yaml.Marshal(cfg.Bootstrap)
		if err != nil {
			panic(fmt.Errorf("worker.WithConfig: %w", err))
		}
		bootstrapOpt = bootstrap.WithConfig(b)
	}

	var loopOpt loop.Option
	if cfg.Loop != nil {
		b, err := yaml.Marshal(cfg.Loop)
		if err != nil {
			panic(fmt.Errorf("worker.WithConfig: %w", err))
		}
		loopOpt = loop.WithConfig(b)
	}

	return OptionFunc(func(o *Options) {
		if cfg.Source != "" {
			o.Source = Source(cfg.Source)
		}
		if bootstrapOpt != nil {
			o.Bootstrap = append(o.Bootstrap, bootstrapOpt)
		}
		if loopOpt != nil {
			o.Loop = append(o.Loop, loopOpt)
		}
		if cfg.Control.Address != "" {
			o.Control = append(o.Control, control.WithAddress(cfg.Control.Address))
		}
		if cfg.SQS.Request != "" {
			o.SQS = append(o.SQS, sqsevents.WithRequestQueue(cfg.SQS.Request))
		}
		if cfg.SQS.Response != "" {
			o.SQS = append(o.SQS, sqsevents.WithResponseQueue(cfg.SQS.Response))
		}
		if cfg.SQS.Wait > 0 {
			o.SQS = append(o.SQS, sqsevents.WithWaitSeconds(cfg.SQS.Wait))
		}
	})
}

// WithConfigFile loads a YAML file and applies it as an Option.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("worker.WithConfigFile(%s): %w", path, err))
	}
	return WithConfig(b)
}

// DefaultConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default worker config.
func DefaultConfigCandidates() []string {
	return []string{
		"worker.yaml",
		"worker.yml",
		"coldstart.yaml",
		"coldstart.yml",
	}
}

// FindDefaultConfigFile searches for a worker config file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultConfigFile() (string, error) {
	candidates := DefaultConfigCandidates()

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("worker config not found (expected %v)", candidates)
}

// WithDefaultConfigFile finds and loads the default worker config file.
// It panics if the file cannot be found or read.
func WithDefaultConfigFile() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		panic(fmt.Errorf("worker.WithDefaultConfigFile: %w", err))
	}
	return WithConfigFile(p)
}
