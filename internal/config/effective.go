package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw overrides on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.DimmingEnabled != nil {
		cfg.DimmingEnabled = *raw.DimmingEnabled
	}
	if raw.InactiveColor != nil {
		color, err := applyColor("inactive_color", cfg.InactiveColor, raw.InactiveColor)
		if err != nil {
			return nil, err
		}
		cfg.InactiveColor = color
	}
	if raw.ActiveOverlayEnabled != nil {
		cfg.ActiveOverlayEnabled = *raw.ActiveOverlayEnabled
	}
	if raw.ActiveColor != nil {
		// An active color without alpha defaults to a faint highlight.
		color, err := applyColor("active_color", Color{A: 0.15}, raw.ActiveColor)
		if err != nil {
			return nil, err
		}
		cfg.ActiveColor = &color
	}
	if raw.PartialDimmingEnabled != nil {
		cfg.PartialDimmingEnabled = *raw.PartialDimmingEnabled
	}
	if raw.Paused != nil {
		cfg.Paused = *raw.Paused
	}
	if raw.PauseHotkey != nil {
		cfg.PauseHotkey = strings.TrimSpace(*raw.PauseHotkey)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warn" {
			cfg.LogLevel = "warning"
		}
	}

	if tp := raw.TerminalPane; tp != nil {
		setBool(&cfg.TerminalPane.Enabled, tp.Enabled)
		if tp.TitlePattern != nil {
			cfg.TerminalPane.TitlePattern = *tp.TitlePattern
		}
		setInt(&cfg.TerminalPane.FontWidth, tp.FontWidth)
		setInt(&cfg.TerminalPane.FontHeight, tp.FontHeight)
		setInt(&cfg.TerminalPane.PaddingLeft, tp.PaddingLeft)
		setInt(&cfg.TerminalPane.PaddingTop, tp.PaddingTop)
		setInt(&cfg.TerminalPane.PollIntervalMS, tp.PollIntervalMS)
	}
	if d := raw.Drag; d != nil {
		setInt(&cfg.Drag.StartThresholdMS, d.StartThresholdMS)
		setInt(&cfg.Drag.StableThresholdMS, d.StableThresholdMS)
	}
	if s := raw.Stabilization; s != nil {
		setInt(&cfg.Stabilization.FirstCheckMS, s.FirstCheckMS)
		setInt(&cfg.Stabilization.FinalCheckMS, s.FinalCheckMS)
	}
	if p := raw.Poll; p != nil {
		setInt(&cfg.Poll.ActiveIntervalMS, p.ActiveIntervalMS)
		setInt(&cfg.Poll.IdleIntervalMS, p.IdleIntervalMS)
		setInt(&cfg.Poll.DisabledIntervalMS, p.DisabledIntervalMS)
	}

	return cfg, nil
}

func applyColor(path string, base Color, raw *RawColor) (Color, error) {
	out := base
	channels := []struct {
		name string
		src  *int
		dst  *uint8
	}{
		{"r", raw.R, &out.R},
		{"g", raw.G, &out.G},
		{"b", raw.B, &out.B},
	}
	for _, ch := range channels {
		if ch.src == nil {
			continue
		}
		if *ch.src < 0 || *ch.src > 255 {
			return Color{}, &ValidationError{Path: path + "." + ch.name, Err: fmt.Errorf("channel must be between 0 and 255")}
		}
		*ch.dst = uint8(*ch.src)
	}
	if raw.A != nil {
		out.A = *raw.A
	}
	return out, nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
