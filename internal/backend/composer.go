package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/utils"
)

const userTextPlaceholder = "{{USER_TEXT}}"

const (
	defaultPersonalPrompt = "Odpowiedz krótko i empatycznie na poniższy tekst: {{USER_TEXT}}"
	defaultBusinessPrompt = "Jesteś uprzejmym Notariuszem. Przygotuj profesjonalną odpowiedź: {{USER_TEXT}}"

	personalApology = "Przepraszam, wystąpił problem z generowaniem odpowiedzi."
	businessApology = "Przepraszam, wystąpił problem z generowaniem odpowiedzi biznesowej."
)

// replyTextKeys are the fields models tend to wrap their answer in when
// they return JSON despite being asked for plain text
var replyTextKeys = []string{"odpowiedz_tekstowa", "reply", "answer", "text", "message", "reply_html"}

// Composer turns an inbound message into the two reply sections. Emotion
// and topic detection, reply generation and HTML assembly all live here;
// transport and caching stay outside.
type Composer struct {
	generator      TextGenerator
	assets         *AssetLibrary
	textProc       *utils.TextProcessor
	personalPrompt string
	businessPrompt string
	maxBodySize    int
	logger         *zap.Logger
}

// NewComposer creates a composer. Prompt template files are optional; the
// built-in defaults apply when a path is empty or unreadable.
func NewComposer(
	generator TextGenerator,
	assets *AssetLibrary,
	textProc *utils.TextProcessor,
	personalPromptFile, businessPromptFile string,
	maxBodySize int,
	logger *zap.Logger,
) *Composer {
	return &Composer{
		generator:      generator,
		assets:         assets,
		textProc:       textProc,
		personalPrompt: loadPrompt(personalPromptFile, defaultPersonalPrompt, logger),
		businessPrompt: loadPrompt(businessPromptFile, defaultBusinessPrompt, logger),
		maxBodySize:    maxBodySize,
		logger:         logger,
	}
}

func loadPrompt(path, fallback string, logger *zap.Logger) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Prompt template not readable, using default",
			zap.String("path", path), zap.Error(err))
		return fallback
	}
	return string(data)
}

// Compose builds both reply variants for the message body
func (c *Composer) Compose(ctx context.Context, body string) *Response {
	capped := c.textProc.ProcessText(body, c.maxBodySize)
	return &Response{
		Business: c.composeBusiness(ctx, capped),
		Personal: c.composePersonal(ctx, capped),
	}
}

// composePersonal generates the empathetic reply with the matching
// emotion emoticon and PDF
func (c *Composer) composePersonal(ctx context.Context, body string) *Section {
	emotion := c.detectEmotion(ctx, body)

	prompt := strings.ReplaceAll(c.personalPrompt, userTextPlaceholder, body)
	text, err := c.generator.Generate(ctx, prompt, body)
	if err != nil {
		c.logger.Error("Personal reply generation failed", zap.Error(err))
		text = ""
	}
	text = sanitizeModelOutput(text)
	if text == "" {
		text = personalApology
	}

	img, pdf := c.assets.EmotionAssets(emotion)
	return &Section{
		ReplyHTML:       buildHTMLReply(text),
		Emoticon:        img,
		PDF:             pdf,
		DetectedEmotion: emotion,
	}
}

// composeBusiness generates the notarial reply and attaches the PDF for
// the recognized topic
func (c *Composer) composeBusiness(ctx context.Context, body string) *Section {
	prompt := strings.ReplaceAll(c.businessPrompt, userTextPlaceholder, body)
	text, err := c.generator.Generate(ctx, prompt, body)
	if err != nil {
		c.logger.Error("Business reply generation failed", zap.Error(err))
		text = ""
	}
	text = sanitizeModelOutput(text)
	if text == "" {
		text = businessApology
	}

	topic := c.detectTopic(ctx, body)
	if topic == "UNKNOWN" {
		return &Section{
			ReplyHTML: buildHTMLReply(text + "\n\nRozpoznane zagadnienia: (zobacz załącznik)"),
			PDF:       c.assets.TopicPDF(FallbackTopic),
			Topic:     "UNKNOWN",
			Notes:     "Niejednoznaczny temat; proszę o kontakt w celu doprecyzowania.",
		}
	}
	return &Section{
		ReplyHTML: buildHTMLReply(text),
		PDF:       c.assets.TopicPDF(topic),
		Topic:     topic,
	}
}

// detectEmotion asks the model for a single label out of the known set
func (c *Composer) detectEmotion(ctx context.Context, body string) string {
	prompt := fmt.Sprintf(
		"Na podstawie poniższego tekstu wybierz dokładnie jedną z następujących etykiet emocji "+
			"(bez dodatkowego tekstu): %s; jeśli żadna nie pasuje, odpowiedz: %s.\n\nTekst:\n%s\n\nOdpowiedź:",
		strings.Join(Emotions, ", "), FallbackEmotion, body)

	res, err := c.generator.Generate(ctx, "Detektor emocji (zwróć tylko jedną etykietę)", prompt)
	if err != nil {
		c.logger.Warn("Emotion detection failed", zap.Error(err))
		return FallbackEmotion
	}
	token := strings.ToLower(strings.TrimSpace(res))
	for _, e := range Emotions {
		if strings.Contains(token, e) {
			return e
		}
	}
	return FallbackEmotion
}

// detectTopic asks the model for the notarial subject and maps the answer
// onto a PDF key with substring heuristics, tolerating verbose replies
func (c *Composer) detectTopic(ctx context.Context, body string) string {
	prompt := fmt.Sprintf(
		"Przeczytaj tekst klienta i rozpoznaj, który z poniższych tematów notarialnych jest "+
			"najbardziej odpowiedni. Jeśli nie możesz jednoznacznie przypisać, odpowiedz: UNKNOWN.\n\n"+
			"Tematy (przykładowe pliki PDF):\n- %s\n\nTekst:\n%s\n\nOdpowiedź (jedna etykieta lub UNKNOWN):",
		strings.Join(Topics, "\n- "), body)

	res, err := c.generator.Generate(ctx, "Detektor tematu notarialnego (jedna etykieta lub UNKNOWN)", prompt)
	if err != nil {
		c.logger.Warn("Topic detection failed", zap.Error(err))
		return "UNKNOWN"
	}
	token := strings.ToLower(strings.TrimSpace(res))
	switch {
	case strings.Contains(token, "darowiz"):
		return Topics[0]
	case strings.Contains(token, "spad"):
		return Topics[1]
	case strings.Contains(token, "intercyz"):
		return Topics[2]
	case strings.Contains(token, "kontakt"), strings.Contains(token, "godzin"):
		return Topics[3]
	case strings.Contains(token, "sprzed"), strings.Contains(token, "nieruchom"):
		return Topics[4]
	}
	return "UNKNOWN"
}

// sanitizeModelOutput unwraps answers that came back as JSON even though
// the prompt asked for plain text
func sanitizeModelOutput(raw string) string {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return ""
	}

	if strings.HasPrefix(txt, "{") || strings.HasPrefix(txt, "[") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(txt), &obj); err == nil {
			for _, key := range replyTextKeys {
				if v, ok := obj[key]; ok {
					return fmt.Sprintf("%v", v)
				}
			}
			if len(obj) == 1 {
				for _, v := range obj {
					return fmt.Sprintf("%v", v)
				}
			}
		}
		var arr []any
		if err := json.Unmarshal([]byte(txt), &arr); err == nil {
			parts := make([]string, 0, len(arr))
			for _, v := range arr {
				parts = append(parts, fmt.Sprintf("%v", v))
			}
			return strings.Join(parts, "\n")
		}
	}

	// JSON prefix followed by the actual text: keep the remainder
	if strings.HasPrefix(txt, "{") {
		if end := strings.Index(txt, "}"); end >= 0 {
			var obj map[string]any
			if err := json.Unmarshal([]byte(txt[:end+1]), &obj); err == nil {
				if remainder := strings.TrimSpace(txt[end+1:]); remainder != "" {
					return remainder
				}
			}
		}
	}
	return raw
}

// buildHTMLReply wraps the generated text in italics and appends the
// automation footer
func buildHTMLReply(text string) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("<p><i>%s</i></p>\n", text))
	buf.WriteString(`<p style="color:#0a8a0a; font-size:10px;">` +
		"Odpowiedź wygenerowana automatycznie przez system AutoResponder." +
		"</p>")
	return buf.String()
}
