package prefs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"shuttle.campusbus.org/internal/logging"
)

// PromptDismissedKey is the stored flag set once the rider dismisses the
// install prompt.
const PromptDismissedKey = "pwa_prompt_dismissed"

// InstallPrompt decides whether to offer installing the board. The flag is
// read once at construction and written once on dismissal.
type InstallPrompt struct {
	store     Store
	logger    *slog.Logger
	dismissed atomic.Bool
}

// NewInstallPrompt reads the dismissed flag from store. A read failure is
// logged and treated as not dismissed.
func NewInstallPrompt(ctx context.Context, store Store, logger *slog.Logger) *InstallPrompt {
	if logger == nil {
		logger = slog.Default()
	}
	p := &InstallPrompt{store: store, logger: logger}

	v, ok, err := store.Get(ctx, PromptDismissedKey)
	if err != nil {
		logging.LogError(logger, "failed to read install prompt flag", err)
	}
	p.dismissed.Store(ok && v == "true")
	return p
}

// Dismissed reports whether the prompt was dismissed.
func (p *InstallPrompt) Dismissed() bool {
	return p.dismissed.Load()
}

// ShouldShow reports whether to show the prompt. Clients already running as
// an installed app never see it.
func (p *InstallPrompt) ShouldShow(standalone bool) bool {
	return !standalone && !p.dismissed.Load()
}

// Dismiss hides the prompt and persists that choice. Repeated calls do not
// write again.
func (p *InstallPrompt) Dismiss(ctx context.Context) error {
	if !p.dismissed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.store.Set(ctx, PromptDismissedKey, "true"); err != nil {
		p.dismissed.Store(false)
		return err
	}
	logging.LogOperation(p.logger, "install_prompt_dismissed")
	return nil
}
