package daemon

import (
	"time"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/logging"
)

func (o *Orchestrator) takePendingConfig() *config.Config {
	o.cfgMu.Lock()
	defer o.cfgMu.Unlock()
	cfg := o.pendingCfg
	o.pendingCfg = nil
	return cfg
}

// applyPendingConfig diffs a new configuration against the current one and
// applies only what changed.
func (o *Orchestrator) applyPendingConfig(now time.Time) {
	next := o.takePendingConfig()
	if next == nil {
		return
	}
	prev := o.cfg
	o.cfg = next
	o.markActivity(now)

	if next.LogLevel != prev.LogLevel && o.logLevel != nil {
		o.logLevel.Set(logging.ParseLevel(next.LogLevel))
	}
	if next.Paused != prev.Paused {
		o.paused.Store(next.Paused)
	}

	prevActive := prev.EffectiveActiveColor()
	nextActive := next.EffectiveActiveColor()
	inactiveChanged := next.InactiveColor != prev.InactiveColor
	activeChanged := !sameColor(prevActive, nextActive)
	if inactiveChanged || activeChanged {
		o.overlays.SetColors(next.InactiveColor, nextActive)
	}

	if !o.initialized {
		o.titleRe = o.compileTitle(next)
		return
	}
	displays := o.st.displays
	visibilityDirty := false

	switch {
	case next.DimmingEnabled && !prev.DimmingEnabled:
		o.overlayErr("create inactive", o.overlays.CreateInactive(displays))
		visibilityDirty = true
	case !next.DimmingEnabled && prev.DimmingEnabled:
		o.overlayErr("close inactive", o.overlays.CloseInactive())
	case next.DimmingEnabled && inactiveChanged:
		o.overlayErr("recreate inactive", o.overlays.RecreateInactive(displays))
		visibilityDirty = true
	}

	if activeChanged {
		o.overlayErr("recreate active", o.overlays.RecreateActive(displays))
		o.st.rectKnown = false
		visibilityDirty = true
	}

	switch {
	case !next.PartialDimmingEnabled && prev.PartialDimmingEnabled:
		o.overlayErr("clear partial", o.overlays.ClearPartial())
		o.st.rectKnown = false
		o.drag.reset()
		if d, ok := o.st.focusedDisplay(); ok {
			o.overlayErr("restore active", o.overlays.RestoreActiveFullSize(d.ID, d.Bounds))
		}
	case next.PartialDimmingEnabled && (!prev.PartialDimmingEnabled || inactiveChanged):
		// Margins share the inactive color; rebuild on the next geometry pass.
		o.overlayErr("clear partial", o.overlays.ClearPartial())
		o.st.rectKnown = false
		o.drag.reset()
	}

	if next.TerminalPane.TitlePattern != prev.TerminalPane.TitlePattern {
		o.titleRe = o.compileTitle(next)
	}
	if next.TerminalPane != prev.TerminalPane || inactiveChanged {
		o.overlayErr("clear tmux", o.overlays.ClearTmux())
		o.st.paneShown = false
	}

	if visibilityDirty {
		o.overlayErr("update visibility", o.overlays.UpdateVisibility(o.st.display))
	}
	o.logger.Info("configuration applied")
}

func sameColor(a, b *config.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
