package config

import "time"

// RoutingConfig holds the three classification lists
type RoutingConfig struct {
	BusinessList []string
	AllowList    []string
	Keywords     []string
}

// WebhookConfig holds the reply-generation backend endpoint settings
type WebhookConfig struct {
	Endpoint string
	Secret   string
	Timeout  time.Duration
}

// MailboxConfig holds the Gmail mailbox settings
type MailboxConfig struct {
	CredentialsFile string
	TokenFile       string
	Query           string
	MaxThreads      int
	ProcessedLabel  string
	PollInterval    time.Duration
}

// OutboundConfig selects the mail transport and the reply display names
type OutboundConfig struct {
	Transport    string
	BusinessName string
	PersonalName string
}

// SMTPConfig holds settings for the SMTP outbound transport
type SMTPConfig struct {
	Address    string
	Username   string
	Password   string
	From       string
	HeloDomain string
}

// BackendConfig holds the reply-generation service settings
type BackendConfig struct {
	ListenAddress      string
	Secret             string
	PersonalPromptFile string
	BusinessPromptFile string
	EmoticonDir        string
	PDFDir             string
	MaxBodySize        int
}

// GeneratorConfig selects the text generation provider
type GeneratorConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GetRouting returns the routing configuration with normalized lists
func (c *Config) GetRouting() RoutingConfig {
	return RoutingConfig{
		BusinessList: c.GetList("routing.business_list"),
		AllowList:    c.GetList("routing.allow_list"),
		Keywords:     c.GetList("routing.keywords"),
	}
}

// GetWebhook returns the webhook configuration
func (c *Config) GetWebhook() (WebhookConfig, error) {
	timeout, err := c.GetDuration("webhook.timeout")
	if err != nil {
		return WebhookConfig{}, err
	}
	return WebhookConfig{
		Endpoint: c.GetString("webhook.endpoint"),
		Secret:   c.GetString("webhook.secret"),
		Timeout:  timeout,
	}, nil
}

// GetMailbox returns the mailbox configuration
func (c *Config) GetMailbox() (MailboxConfig, error) {
	interval, err := c.GetDuration("mailbox.poll_interval")
	if err != nil {
		return MailboxConfig{}, err
	}
	return MailboxConfig{
		CredentialsFile: c.GetString("mailbox.credentials_file"),
		TokenFile:       c.GetString("mailbox.token_file"),
		Query:           c.GetString("mailbox.query"),
		MaxThreads:      c.GetInt("mailbox.max_threads"),
		ProcessedLabel:  c.GetString("mailbox.processed_label"),
		PollInterval:    interval,
	}, nil
}

// GetOutbound returns the outbound transport configuration
func (c *Config) GetOutbound() OutboundConfig {
	return OutboundConfig{
		Transport:    c.GetString("outbound.transport"),
		BusinessName: c.GetString("outbound.business_name"),
		PersonalName: c.GetString("outbound.personal_name"),
	}
}

// GetSMTP returns the SMTP transport configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Address:    c.GetString("smtp.address"),
		Username:   c.GetString("smtp.username"),
		Password:   c.GetString("smtp.password"),
		From:       c.GetString("smtp.from"),
		HeloDomain: c.GetString("smtp.helo_domain"),
	}
}

// GetBackend returns the reply-generation service configuration
func (c *Config) GetBackend() BackendConfig {
	return BackendConfig{
		ListenAddress:      c.GetString("backend.listen_address"),
		Secret:             c.GetString("backend.secret"),
		PersonalPromptFile: c.GetString("backend.personal_prompt_file"),
		BusinessPromptFile: c.GetString("backend.business_prompt_file"),
		EmoticonDir:        c.GetString("backend.emoticon_dir"),
		PDFDir:             c.GetString("backend.pdf_dir"),
		MaxBodySize:        c.GetInt("backend.max_body_size"),
	}
}

// GetGenerator returns the generator configuration
func (c *Config) GetGenerator() GeneratorConfig {
	return GeneratorConfig{
		Provider: c.GetString("generator.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}
