package config

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"go-mines/internal/command"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

var (
	cfgFile = "go-mines/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type GameConfig struct {
	Size      int      `json:"size"`
	Mines     int      `json:"mines"`
	TimeLimit int      `json:"time_limit"`
	Seed      int64    `json:"seed"`
	Layouts   []string `json:"layouts"`
}

// ConfigColors are lipgloss colors: ANSI numbers or hex strings.
type ConfigColors struct {
	Concealed string `json:"concealed"`
	Flagged   string `json:"flagged"`
	Number    string `json:"number"`
	Mine      string `json:"mine"`
	Detonated string `json:"detonated"`
	Normal    string `json:"timer_normal"`
	Warning   string `json:"timer_warning"`
	Danger    string `json:"timer_danger"`
	Error     string `json:"error"`
}

type ConfigSymbols struct {
	Concealed string `json:"concealed"`
	Flagged   string `json:"flagged"`
	Empty     string `json:"empty"`
	Mine      string `json:"mine"`
	Detonated string `json:"detonated"`
}

type Theme struct {
	ShowLabels bool          `json:"show_labels"`
	Colors     ConfigColors  `json:"colors"`
	Symbols    ConfigSymbols `json:"symbols"`
}

// LogConfig selects the log level; "off" disables logging. An empty File
// means the XDG state directory.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Config struct {
	Game  GameConfig `json:"game"`
	Theme Theme      `json:"theme"`
	Log   LogConfig  `json:"log"`
}

// InitConfig loads the user config file, if any, over the defaults.
func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads a config file at an explicit path over the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig
	if err := readCfgFile(path, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	g := c.Game
	if g.Size < 2 || g.Size > command.MaxCoordinate {
		return &InvalidConfig{fmt.Sprintf("board size %d outside 2..%d", g.Size, command.MaxCoordinate)}
	}
	if g.Mines < 0 || g.Mines >= g.Size*g.Size {
		return &InvalidConfig{fmt.Sprintf("%d mines do not fit a %dx%d board", g.Mines, g.Size, g.Size)}
	}
	if g.TimeLimit < 0 {
		return &InvalidConfig{"time limit must not be negative"}
	}

	s := c.Theme.Symbols
	for _, sym := range []string{s.Concealed, s.Flagged, s.Empty, s.Mine, s.Detonated} {
		if utf8.RuneCountInString(sym) != 1 {
			return &InvalidConfig{fmt.Sprintf("symbol %q must be a single character", sym)}
		}
		r, _ := utf8.DecodeRuneInString(sym)
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}

	if c.Log.Level != "off" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return &InvalidConfig{err.Error()}
		}
	}
	return nil
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
