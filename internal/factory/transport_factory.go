package factory

import (
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"

	"go.uber.org/zap"

	gmailadapter "github.com/mikey/llm-autoresponder/internal/adapters/gmail"
	smtpadapter "github.com/mikey/llm-autoresponder/internal/adapters/smtp"
	"github.com/mikey/llm-autoresponder/internal/config"
	"github.com/mikey/llm-autoresponder/internal/core"
)

// TransportFactory creates the outbound mail transport
type TransportFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(cfg *config.Config, logger *zap.Logger) *TransportFactory {
	return &TransportFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTransport creates the transport named by outbound.transport. The
// Gmail service is passed in so the mailbox and transport share one client.
func (f *TransportFactory) CreateTransport(srv *gmailapi.Service) (core.MailTransport, error) {
	outbound := f.cfg.GetOutbound()

	switch outbound.Transport {
	case "gmail":
		return gmailadapter.NewTransport(srv, f.logger)
	case "smtp":
		smtpCfg := f.cfg.GetSMTP()
		return smtpadapter.NewTransport(
			smtpCfg.Address,
			smtpCfg.Username,
			smtpCfg.Password,
			smtpCfg.From,
			smtpCfg.HeloDomain,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported outbound transport: %s", outbound.Transport)
	}
}
