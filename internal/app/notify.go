package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/config"
	"github.com/newthinker/finsight/internal/notifier"
	"github.com/newthinker/finsight/internal/notifier/email"
	"github.com/newthinker/finsight/internal/notifier/telegram"
	"github.com/newthinker/finsight/internal/notifier/webhook"
)

// buildNotifiers initializes the configured notifiers and registers the
// extra ones given as options.
func buildNotifiers(cfgs []config.NotifierConfig, extra []notifier.Notifier) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	for _, c := range cfgs {
		var n notifier.Notifier
		switch c.Type {
		case "webhook":
			n = webhook.New("", nil)
		case "telegram":
			n = telegram.New("", "")
		case "email":
			n = email.New("", 0, "", "", "", nil)
		default:
			continue // rejected by config validation
		}
		if err := n.Init(notifier.Config{Type: c.Type, Params: c.Params}); err != nil {
			return nil, err
		}
		if err := reg.Register(n); err != nil {
			return nil, err
		}
	}
	for _, n := range extra {
		if err := reg.Register(n); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// notify announces r to every notifier. Failures are logged only.
func (a *App) notify(ctx context.Context, r *analysis.Report) {
	if a.notifiers.Len() == 0 {
		return
	}
	for name, err := range a.notifiers.NotifyAll(ctx, notifier.FromReport(r)) {
		a.logger.Warn("report notification failed",
			zap.String("notifier", name),
			zap.String("id", r.ID),
			zap.Error(err))
	}
}
