// Package di wires the two services together with dig. Each binary builds
// its own container so the triage daemon never drags in model SDK clients
// and the backend never touches the mailbox.
package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"

	gmailadapter "github.com/mikey/llm-autoresponder/internal/adapters/gmail"
	"github.com/mikey/llm-autoresponder/internal/adapters/webhook"
	"github.com/mikey/llm-autoresponder/internal/backend"
	"github.com/mikey/llm-autoresponder/internal/config"
	"github.com/mikey/llm-autoresponder/internal/core"
	"github.com/mikey/llm-autoresponder/internal/factory"
	"github.com/mikey/llm-autoresponder/internal/logging"
	"github.com/mikey/llm-autoresponder/internal/utils"
)

// BuildTriageContainer wires the triage daemon
func BuildTriageContainer(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Gmail service shared by the mailbox and the transport
	if err := container.Provide(func(cfg *config.Config) (*gmailapi.Service, error) {
		mailboxCfg, err := cfg.GetMailbox()
		if err != nil {
			return nil, err
		}
		return gmailadapter.NewService(ctx, mailboxCfg.CredentialsFile, mailboxCfg.TokenFile)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, srv *gmailapi.Service, logger *zap.Logger) (core.Mailbox, error) {
		mailboxCfg, err := cfg.GetMailbox()
		if err != nil {
			return nil, err
		}
		return gmailadapter.NewMailbox(srv, mailboxCfg.Query, mailboxCfg.ProcessedLabel, logger), nil
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TransportFactory, srv *gmailapi.Service) (core.MailTransport, error) {
		return f.CreateTransport(srv)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.BackendClient, error) {
		webhookCfg, err := cfg.GetWebhook()
		if err != nil {
			return nil, err
		}
		return webhook.NewClient(webhookCfg.Endpoint, webhookCfg.Secret, webhookCfg.Timeout, logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.Classifier {
		routing := cfg.GetRouting()
		return core.NewClassifier(routing.BusinessList, routing.AllowList, routing.Keywords, logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.Dispatcher {
		outbound := cfg.GetOutbound()
		return core.NewDispatcher(outbound.BusinessName, outbound.PersonalName, logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(core.NewReplySender); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		mailbox core.Mailbox,
		backendClient core.BackendClient,
		classifier *core.Classifier,
		dispatcher *core.Dispatcher,
		sender *core.ReplySender,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		mailboxCfg, err := cfg.GetMailbox()
		if err != nil {
			return nil, err
		}
		return core.NewTriageService(mailbox, backendClient, classifier, dispatcher, sender,
			logger, mailboxCfg.MaxThreads), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// BuildBackendContainer wires the reply-generation service
func BuildBackendContainer(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	if err := container.Provide(factory.NewGeneratorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.GeneratorFactory) (backend.TextGenerator, error) {
		return f.CreateGenerator(ctx)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (backend.ReplyCache, error) {
		return f.CreateReplyCache()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *backend.AssetLibrary {
		backendCfg := cfg.GetBackend()
		return backend.NewAssetLibrary(backendCfg.EmoticonDir, backendCfg.PDFDir, logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		generator backend.TextGenerator,
		assets *backend.AssetLibrary,
		textProc *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *backend.Composer {
		backendCfg := cfg.GetBackend()
		return backend.NewComposer(generator, assets, textProc,
			backendCfg.PersonalPromptFile, backendCfg.BusinessPromptFile,
			backendCfg.MaxBodySize, logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		composer *backend.Composer,
		cache backend.ReplyCache,
		cfg *config.Config,
		logger *zap.Logger,
	) *backend.Server {
		backendCfg := cfg.GetBackend()
		return backend.NewServer(backendCfg.ListenAddress, backendCfg.Secret, composer, cache, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
