package notify

import (
	"context"

	"github.com/procurehq/intake/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify",
	fx.Provide(NewFromConfig),
)

// NewFromConfig selects the delivery transport from configuration.
func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.NotifyTransport {
	case config.TransportSMTP:
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), nil
	case config.TransportGmail:
		svc, err := NewGmailService(context.Background(), cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		return NewGmail(svc, cfg.GmailSender), nil
	default:
		log.Info("notification disabled, using no-op provider")
		return &NoOpProvider{}, nil
	}
}
