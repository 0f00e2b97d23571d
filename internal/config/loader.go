package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

func defaults() *Config {
	return &Config{
		MaxNodes: 10,
		Listeners: ListenersConfig{
			Telnet: TelnetConfig{
				Port:                  2323,
				BinaryMode:            true,
				ReadBufferSize:        4096,
				ScreenPositionTimeout: Duration(2 * time.Second),
				NegotiationTimeout:    Duration(2 * time.Second),
			},
			SSH: SSHConfig{
				Port: 2222,
			},
		},
	}
}

// Load reads filename over the built-in defaults. Files named under
// include: are applied first, relative to the including file, so the
// including file has the last word. Each file is read at most once.
func Load(filename string) (*Config, error) {
	l := &loader{cfg: defaults(), seen: make(map[string]bool)}
	if err := l.load(filename); err != nil {
		return nil, err
	}
	return l.cfg, nil
}

type loader struct {
	cfg  *Config
	seen map[string]bool
}

func (l *loader) load(filename string) error {
	path, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	if l.seen[path] {
		return nil
	}
	l.seen[path] = true
	l.cfg.LoadedFiles = append(l.cfg.LoadedFiles, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data := []byte(os.ExpandEnv(string(raw)))

	var head struct {
		Include []string `yaml:"include"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, inc := range head.Include {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := l.load(inc); err != nil {
			return fmt.Errorf("failed to load included config %s: %w", inc, err)
		}
	}

	if err := yaml.Unmarshal(data, l.cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
