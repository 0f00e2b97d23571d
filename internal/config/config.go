package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LoadedFiles []string        `yaml:"-"` // absolute paths, in load order
	Include     []string        `yaml:"include"`
	Debug       bool            `yaml:"debug"`
	MaxNodes    int             `yaml:"maxNodes"`
	HotReload   bool            `yaml:"hotReload"`
	General     GeneralConfig   `yaml:"general"`
	Paths       PathsConfig     `yaml:"paths"`
	Loggers     []LoggerConfig  `yaml:"loggers"`
	Listeners   ListenersConfig `yaml:"listeners"`
	Views       map[string]View `yaml:"views"`
}

type GeneralConfig struct {
	BoardName       string `yaml:"boardName"`
	PrettyBoardName string `yaml:"prettyBoardName"`
	Description     string `yaml:"description"`
	Hostname        string `yaml:"hostname"`
	Website         string `yaml:"website"`
}

type PathsConfig struct {
	Data string `yaml:"data"`
	Keys string `yaml:"keys"`
	Art  string `yaml:"art"`
}

type LoggerConfig struct {
	Stdout     bool   `yaml:"stdout,omitempty"`
	File       string `yaml:"file,omitempty"`
	Level      string `yaml:"level"`
	Source     bool   `yaml:"source"`
	HideTime   bool   `yaml:"hideTime,omitempty"`
	TimeFormat string `yaml:"timeFormat,omitempty"`
}

type ListenersConfig struct {
	Telnet TelnetConfig `yaml:"telnet"`
	SSH    SSHConfig    `yaml:"ssh"`
}

type TelnetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	InitialView string `yaml:"initialView"`

	// Engine tuning
	BinaryMode            bool     `yaml:"binaryMode"`
	ReadBufferSize        int      `yaml:"readBufferSize,omitempty"`
	ScreenPositionTimeout Duration `yaml:"screenPositionTimeout,omitempty"`
	NegotiationTimeout    Duration `yaml:"negotiationTimeout,omitempty"`
}

type SSHConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Port        int      `yaml:"port"`
	InitialView string   `yaml:"initialView"`
	KeyFile     string   `yaml:"keyFile"`
	IdleTimeout Duration `yaml:"idleTimeout,omitempty"`
}

type View struct {
	Type    string                 `yaml:"type"`
	Module  string                 `yaml:"module,omitempty"` // Name of the module to use
	Art     string                 `yaml:"art,omitempty"`
	Options map[string]interface{} `yaml:"options,omitempty"`
	Actions map[string]string      `yaml:"actions,omitempty"`
	Next    *NextView              `yaml:"next,omitempty"`
}

// NextView moves on from a view: after Delay, or on any key when Delay is
// zero. It may be written as a bare view name.
type NextView struct {
	View  string   `yaml:"view"`
	Delay Duration `yaml:"delay"`
}

// Duration reads Go duration strings ("1500ms", "2s") or a bare number of
// milliseconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}

	var ms int64
	if err := value.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (n *NextView) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = NextView{View: value.Value}
		return nil
	}

	type plain NextView
	return value.Decode((*plain)(n))
}
