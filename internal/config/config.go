package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Color is an overlay paint color: 8-bit RGB plus opacity in [0, 1].
type Color struct {
	R uint8   `yaml:"r"`
	G uint8   `yaml:"g"`
	B uint8   `yaml:"b"`
	A float64 `yaml:"a"`
}

// Pixel returns the color as a 24-bit TrueColor pixel value.
func (c Color) Pixel() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex formats the RGB part as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// TerminalPane configures dimming of inactive tmux panes inside a terminal window.
type TerminalPane struct {
	Enabled bool `yaml:"enabled"`
	// TitlePattern is a regular expression matched against the focused
	// window title to decide whether it hosts the tmux client.
	TitlePattern   string `yaml:"title_pattern"`
	FontWidth      int    `yaml:"font_width"`
	FontHeight     int    `yaml:"font_height"`
	PaddingLeft    int    `yaml:"padding_left"`
	PaddingTop     int    `yaml:"padding_top"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

// Drag tunes the interactive move/resize heuristic.
type Drag struct {
	StartThresholdMS  int `yaml:"start_threshold_ms"`
	StableThresholdMS int `yaml:"stable_threshold_ms"`
}

// Stabilization tunes the two-stage display topology re-check.
type Stabilization struct {
	FirstCheckMS int `yaml:"first_check_ms"`
	FinalCheckMS int `yaml:"final_check_ms"`
}

// Poll tunes the orchestrator loop sleep.
type Poll struct {
	ActiveIntervalMS   int `yaml:"active_interval_ms"`
	IdleIntervalMS     int `yaml:"idle_interval_ms"`
	DisabledIntervalMS int `yaml:"disabled_interval_ms"`
}

// Config holds the application configuration.
type Config struct {
	DimmingEnabled        bool          `yaml:"dimming_enabled"`
	InactiveColor         Color         `yaml:"inactive_color"`
	ActiveOverlayEnabled  bool          `yaml:"active_overlay_enabled"`
	ActiveColor           *Color        `yaml:"active_color,omitempty"`
	PartialDimmingEnabled bool          `yaml:"partial_dimming_enabled"`
	Paused                bool          `yaml:"paused"`
	PauseHotkey           string        `yaml:"pause_hotkey"`
	TerminalPane          TerminalPane  `yaml:"terminal_pane"`
	Drag                  Drag          `yaml:"drag"`
	Stabilization         Stabilization `yaml:"stabilization"`
	Poll                  Poll          `yaml:"poll"`
	LogLevel              string        `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		DimmingEnabled:        true,
		InactiveColor:         Color{R: 0, G: 0, B: 0, A: 0.6},
		ActiveOverlayEnabled:  false,
		ActiveColor:           nil,
		PartialDimmingEnabled: false,
		Paused:                false,
		PauseHotkey:           "Mod4-Shift-d",
		TerminalPane: TerminalPane{
			Enabled:        false,
			TitlePattern:   "tmux",
			FontWidth:      9,
			FontHeight:     18,
			PaddingLeft:    2,
			PaddingTop:     2,
			PollIntervalMS: 250,
		},
		Drag: Drag{
			StartThresholdMS:  150,
			StableThresholdMS: 200,
		},
		Stabilization: Stabilization{
			FirstCheckMS: 500,
			FinalCheckMS: 5000,
		},
		Poll: Poll{
			ActiveIntervalMS:   30,
			IdleIntervalMS:     150,
			DisabledIntervalMS: 500,
		},
		LogLevel: "info",
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.ActiveColor != nil {
		active := *c.ActiveColor
		out.ActiveColor = &active
	}
	return &out
}

// EffectiveActiveColor returns the active highlight color when the feature is
// enabled and a color is configured.
func (c *Config) EffectiveActiveColor() *Color {
	if c == nil || !c.ActiveOverlayEnabled || c.ActiveColor == nil {
		return nil
	}
	active := *c.ActiveColor
	return &active
}

// AnyFeatureEnabled reports whether at least one overlay category can be shown.
func (c *Config) AnyFeatureEnabled() bool {
	return c.DimmingEnabled || c.EffectiveActiveColor() != nil || c.PartialDimmingEnabled || c.TerminalPane.Enabled
}

// TitleRegexp compiles the terminal title pattern.
func (c *Config) TitleRegexp() (*regexp.Regexp, error) {
	return regexp.Compile(c.TerminalPane.TitlePattern)
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// DragStartThreshold is the maximum gap between geometry changes that starts a drag.
func (c *Config) DragStartThreshold() time.Duration { return ms(c.Drag.StartThresholdMS) }

// DragStableThreshold is how long geometry must be unchanged to end a drag.
func (c *Config) DragStableThreshold() time.Duration { return ms(c.Drag.StableThresholdMS) }

// FirstCheckDelay is the fast-path topology re-check delay.
func (c *Config) FirstCheckDelay() time.Duration { return ms(c.Stabilization.FirstCheckMS) }

// FinalCheckDelay is the mandatory topology re-check delay.
func (c *Config) FinalCheckDelay() time.Duration { return ms(c.Stabilization.FinalCheckMS) }

// ActiveInterval is the loop sleep shortly after activity.
func (c *Config) ActiveInterval() time.Duration { return ms(c.Poll.ActiveIntervalMS) }

// IdleInterval is the loop sleep when nothing changed recently.
func (c *Config) IdleInterval() time.Duration { return ms(c.Poll.IdleIntervalMS) }

// DisabledInterval is the loop sleep when paused or fully disabled.
func (c *Config) DisabledInterval() time.Duration { return ms(c.Poll.DisabledIntervalMS) }

// PanePollInterval is how often the tmux pane watcher samples tmux.
func (c *Config) PanePollInterval() time.Duration { return ms(c.TerminalPane.PollIntervalMS) }

// SaveTo writes the configuration as YAML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if err := validateColor("inactive_color", c.InactiveColor); err != nil {
		return err
	}
	if c.ActiveColor != nil {
		if err := validateColor("active_color", *c.ActiveColor); err != nil {
			return err
		}
	}
	if c.ActiveOverlayEnabled && c.ActiveColor == nil {
		warn("active_overlay_enabled is true but active_color is not set; active highlighting stays off")
	}

	tp := c.TerminalPane
	if tp.FontWidth <= 0 {
		return &ValidationError{Path: "terminal_pane.font_width", Err: fmt.Errorf("font_width must be > 0")}
	}
	if tp.FontHeight <= 0 {
		return &ValidationError{Path: "terminal_pane.font_height", Err: fmt.Errorf("font_height must be > 0")}
	}
	if tp.PaddingLeft < 0 || tp.PaddingTop < 0 {
		return &ValidationError{Path: "terminal_pane", Err: fmt.Errorf("padding values must be >= 0")}
	}
	if tp.PollIntervalMS <= 0 {
		return &ValidationError{Path: "terminal_pane.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	if strings.TrimSpace(tp.TitlePattern) == "" {
		return &ValidationError{Path: "terminal_pane.title_pattern", Err: fmt.Errorf("title_pattern is required")}
	}
	if _, err := regexp.Compile(tp.TitlePattern); err != nil {
		return &ValidationError{Path: "terminal_pane.title_pattern", Err: fmt.Errorf("invalid regular expression: %w", err)}
	}

	if c.Drag.StartThresholdMS <= 0 {
		return &ValidationError{Path: "drag.start_threshold_ms", Err: fmt.Errorf("start_threshold_ms must be > 0")}
	}
	if c.Drag.StableThresholdMS <= 0 {
		return &ValidationError{Path: "drag.stable_threshold_ms", Err: fmt.Errorf("stable_threshold_ms must be > 0")}
	}

	if c.Stabilization.FirstCheckMS <= 0 {
		return &ValidationError{Path: "stabilization.first_check_ms", Err: fmt.Errorf("first_check_ms must be > 0")}
	}
	if c.Stabilization.FinalCheckMS <= c.Stabilization.FirstCheckMS {
		return &ValidationError{Path: "stabilization.final_check_ms", Err: fmt.Errorf("final_check_ms must be greater than first_check_ms")}
	}

	if c.Poll.ActiveIntervalMS <= 0 || c.Poll.IdleIntervalMS <= 0 || c.Poll.DisabledIntervalMS <= 0 {
		return &ValidationError{Path: "poll", Err: fmt.Errorf("poll intervals must be > 0")}
	}
	if c.Poll.ActiveIntervalMS > c.Poll.IdleIntervalMS {
		return &ValidationError{Path: "poll.active_interval_ms", Err: fmt.Errorf("active_interval_ms must not exceed idle_interval_ms")}
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	return nil
}

func validateColor(path string, c Color) error {
	if c.A < 0 || c.A > 1 {
		return &ValidationError{Path: path + ".a", Err: fmt.Errorf("opacity must be between 0.0 and 1.0")}
	}
	return nil
}

func warn(msg string) {
	fmt.Fprintln(os.Stderr, "warning:", msg)
}
