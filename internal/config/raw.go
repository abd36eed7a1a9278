package config

type RawColor struct {
	R *int     `yaml:"r"`
	G *int     `yaml:"g"`
	B *int     `yaml:"b"`
	A *float64 `yaml:"a"`
}

func (c *RawColor) merge(overlay *RawColor) *RawColor {
	if overlay == nil {
		return c
	}
	if c == nil {
		cp := *overlay
		return &cp
	}
	out := *c
	if overlay.R != nil {
		out.R = overlay.R
	}
	if overlay.G != nil {
		out.G = overlay.G
	}
	if overlay.B != nil {
		out.B = overlay.B
	}
	if overlay.A != nil {
		out.A = overlay.A
	}
	return &out
}

type RawTerminalPane struct {
	Enabled        *bool   `yaml:"enabled"`
	TitlePattern   *string `yaml:"title_pattern"`
	FontWidth      *int    `yaml:"font_width"`
	FontHeight     *int    `yaml:"font_height"`
	PaddingLeft    *int    `yaml:"padding_left"`
	PaddingTop     *int    `yaml:"padding_top"`
	PollIntervalMS *int    `yaml:"poll_interval_ms"`
}

type RawDrag struct {
	StartThresholdMS  *int `yaml:"start_threshold_ms"`
	StableThresholdMS *int `yaml:"stable_threshold_ms"`
}

type RawStabilization struct {
	FirstCheckMS *int `yaml:"first_check_ms"`
	FinalCheckMS *int `yaml:"final_check_ms"`
}

type RawPoll struct {
	ActiveIntervalMS   *int `yaml:"active_interval_ms"`
	IdleIntervalMS     *int `yaml:"idle_interval_ms"`
	DisabledIntervalMS *int `yaml:"disabled_interval_ms"`
}

type RawConfig struct {
	DimmingEnabled        *bool             `yaml:"dimming_enabled"`
	InactiveColor         *RawColor         `yaml:"inactive_color"`
	ActiveOverlayEnabled  *bool             `yaml:"active_overlay_enabled"`
	ActiveColor           *RawColor         `yaml:"active_color"`
	PartialDimmingEnabled *bool             `yaml:"partial_dimming_enabled"`
	Paused                *bool             `yaml:"paused"`
	PauseHotkey           *string           `yaml:"pause_hotkey"`
	TerminalPane          *RawTerminalPane  `yaml:"terminal_pane"`
	Drag                  *RawDrag          `yaml:"drag"`
	Stabilization         *RawStabilization `yaml:"stabilization"`
	Poll                  *RawPoll          `yaml:"poll"`
	LogLevel              *string           `yaml:"log_level"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.DimmingEnabled != nil {
		out.DimmingEnabled = overlay.DimmingEnabled
	}
	out.InactiveColor = out.InactiveColor.merge(overlay.InactiveColor)
	if overlay.ActiveOverlayEnabled != nil {
		out.ActiveOverlayEnabled = overlay.ActiveOverlayEnabled
	}
	out.ActiveColor = out.ActiveColor.merge(overlay.ActiveColor)
	if overlay.PartialDimmingEnabled != nil {
		out.PartialDimmingEnabled = overlay.PartialDimmingEnabled
	}
	if overlay.Paused != nil {
		out.Paused = overlay.Paused
	}
	if overlay.PauseHotkey != nil {
		out.PauseHotkey = overlay.PauseHotkey
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	if overlay.TerminalPane != nil {
		if out.TerminalPane == nil {
			out.TerminalPane = &RawTerminalPane{}
		} else {
			cp := *out.TerminalPane
			out.TerminalPane = &cp
		}
		tp := out.TerminalPane
		o := overlay.TerminalPane
		if o.Enabled != nil {
			tp.Enabled = o.Enabled
		}
		if o.TitlePattern != nil {
			tp.TitlePattern = o.TitlePattern
		}
		if o.FontWidth != nil {
			tp.FontWidth = o.FontWidth
		}
		if o.FontHeight != nil {
			tp.FontHeight = o.FontHeight
		}
		if o.PaddingLeft != nil {
			tp.PaddingLeft = o.PaddingLeft
		}
		if o.PaddingTop != nil {
			tp.PaddingTop = o.PaddingTop
		}
		if o.PollIntervalMS != nil {
			tp.PollIntervalMS = o.PollIntervalMS
		}
	}

	if overlay.Drag != nil {
		if out.Drag == nil {
			out.Drag = &RawDrag{}
		} else {
			cp := *out.Drag
			out.Drag = &cp
		}
		if overlay.Drag.StartThresholdMS != nil {
			out.Drag.StartThresholdMS = overlay.Drag.StartThresholdMS
		}
		if overlay.Drag.StableThresholdMS != nil {
			out.Drag.StableThresholdMS = overlay.Drag.StableThresholdMS
		}
	}

	if overlay.Stabilization != nil {
		if out.Stabilization == nil {
			out.Stabilization = &RawStabilization{}
		} else {
			cp := *out.Stabilization
			out.Stabilization = &cp
		}
		if overlay.Stabilization.FirstCheckMS != nil {
			out.Stabilization.FirstCheckMS = overlay.Stabilization.FirstCheckMS
		}
		if overlay.Stabilization.FinalCheckMS != nil {
			out.Stabilization.FinalCheckMS = overlay.Stabilization.FinalCheckMS
		}
	}

	if overlay.Poll != nil {
		if out.Poll == nil {
			out.Poll = &RawPoll{}
		} else {
			cp := *out.Poll
			out.Poll = &cp
		}
		if overlay.Poll.ActiveIntervalMS != nil {
			out.Poll.ActiveIntervalMS = overlay.Poll.ActiveIntervalMS
		}
		if overlay.Poll.IdleIntervalMS != nil {
			out.Poll.IdleIntervalMS = overlay.Poll.IdleIntervalMS
		}
		if overlay.Poll.DisabledIntervalMS != nil {
			out.Poll.DisabledIntervalMS = overlay.Poll.DisabledIntervalMS
		}
	}

	return out
}
