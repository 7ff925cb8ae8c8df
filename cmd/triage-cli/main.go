// triage-cli classifies a single email from a file or stdin and prints the
// routing decision. With a webhook endpoint it also fetches the reply
// variants, without sending anything.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/adapters/webhook"
	"github.com/mikey/llm-autoresponder/internal/config"
	"github.com/mikey/llm-autoresponder/internal/core"
	"github.com/mikey/llm-autoresponder/internal/logging"
)

var (
	businessList = flag.String("business-list", "", "Comma-separated business sender addresses")
	allowList    = flag.String("allow-list", "", "Comma-separated personal sender addresses")
	keywords     = flag.String("keywords", "", "Comma-separated trigger keywords")

	webhookURL    = flag.String("webhook", "", "Webhook endpoint; when set, fetch reply variants")
	webhookSecret = flag.String("webhook-secret", "", "Webhook shared secret")
	timeout       = flag.Duration("timeout", 20*time.Second, "Webhook call timeout")

	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	useConfig  = flag.Bool("config", false, "Read lists and webhook settings from the config file")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	biz := splitList(*businessList)
	allow := splitList(*allowList)
	keys := splitList(*keywords)
	endpoint := *webhookURL
	secret := *webhookSecret

	if *useConfig {
		cfg, err := config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		routing := cfg.GetRouting()
		biz, allow, keys = routing.BusinessList, routing.AllowList, routing.Keywords
		webhookCfg, err := cfg.GetWebhook()
		if err != nil {
			logger.Fatal("Invalid webhook configuration", zap.Error(err))
		}
		if endpoint == "" {
			endpoint = webhookCfg.Endpoint
			secret = webhookCfg.Secret
		}
	}

	msg, err := readEmail(logger)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	classifier := core.NewClassifier(biz, allow, keys, logger)
	decision := classifier.Classify(msg)

	fmt.Printf("From (raw):      %s\n", msg.RawFrom)
	fmt.Printf("Sender:          %s\n", msg.Sender)
	fmt.Printf("Subject:         %s\n", msg.Subject)
	fmt.Printf("Reason:          %s\n", decision.Reason)
	fmt.Printf("Wants business:  %t\n", decision.WantsBusiness)
	fmt.Printf("Wants personal:  %t\n", decision.WantsPersonal)

	if decision.Reason == core.ReasonNone || endpoint == "" {
		return
	}

	client, err := webhook.NewClient(endpoint, secret, *timeout, logger)
	if err != nil {
		logger.Fatal("Failed to create webhook client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := client.RequestReplies(ctx, msg)
	if err != nil {
		logger.Fatal("Webhook call failed", zap.Error(err))
	}

	printVariant("business", resp.Business)
	printVariant("personal", resp.Personal)
}

func readEmail(logger *zap.Logger) (*core.InboundMessage, error) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
		logger.Debug("Reading email from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Debug("Reading email from stdin")
	}

	parsed, err := mail.ReadMessage(bufio.NewReader(reader))
	if err != nil {
		return nil, err
	}
	bodyBytes, err := io.ReadAll(parsed.Body)
	if err != nil {
		return nil, err
	}

	rawFrom := parsed.Header.Get("From")
	return &core.InboundMessage{
		Sender:  core.NormalizeAddress(rawFrom),
		RawFrom: rawFrom,
		Subject: parsed.Header.Get("Subject"),
		Body:    string(bodyBytes),
		Thread: core.ThreadRef{
			RFCMessageID: parsed.Header.Get("Message-ID"),
		},
	}, nil
}

func printVariant(name string, v *core.ReplyVariant) {
	if v == nil {
		fmt.Printf("Variant %-9s absent\n", name+":")
		return
	}
	fmt.Printf("Variant %-9s html=%d bytes", name+":", len(v.HTMLBody))
	if v.Image != nil {
		fmt.Printf(" image=%s", v.Image.Filename)
	}
	if v.PDF != nil {
		fmt.Printf(" pdf=%s", v.PDF.Filename)
	}
	fmt.Println()
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
