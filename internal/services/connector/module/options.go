package module

import (
	"time"

	"gcsbridge/internal/platform/config"
)

// Options holds every setting the connector module wires from env
type Options struct {
	// Adobe identity
	ClientID     string
	ClientSecret string
	OrgID        string
	TokenURL     string
	Scope        string

	// Adobe endpoints
	EventsBaseURL      string
	JournalingEndpoint string
	GCSBaseURL         string

	// Anthropic
	AnthropicAPIKey  string
	AnthropicBaseURL string
	Model            string
	MaxTokens        int

	// poll loop
	PollInterval time.Duration
	PageLimit    int
	MaxRetries   int
	RetryBase    time.Duration
	TokenMargin  time.Duration
	HTTPTimeout  time.Duration
	DryRun       bool
}

// FromConfig reads the module's settings from the environment
func FromConfig(cfg config.Conf) Options {
	adobe := cfg.Prefix("ADOBE_")
	anth := cfg.Prefix("ANTHROPIC_")
	conn := cfg.Prefix("CONNECTOR_")

	return Options{
		ClientID:     adobe.MustString("CLIENT_ID"),
		ClientSecret: adobe.MustString("CLIENT_SECRET"),
		OrgID:        adobe.MustString("IMS_ORG_ID"),
		TokenURL:     adobe.MayString("IMS_TOKEN_URL", "https://ims-na1.adobelogin.com/ims/token/v3"),
		Scope:        adobe.MayString("SCOPE", ""),

		EventsBaseURL:      adobe.MayString("EVENTS_BASE_URL", "https://events-va6.adobe.io"),
		JournalingEndpoint: adobe.MustString("JOURNALING_ENDPOINT"),
		GCSBaseURL:         adobe.MayString("GCS_API_BASE_URL", "https://gcs.adobe.io/v1"),

		AnthropicAPIKey:  anth.MustString("API_KEY"),
		AnthropicBaseURL: anth.MayString("BASE_URL", ""),
		Model:            anth.MayString("MODEL", ""),
		MaxTokens:        anth.MayInt("MAX_TOKENS", 4000),

		PollInterval: conn.MayDuration("POLL_INTERVAL", 30*time.Second),
		PageLimit:    conn.MayInt("PAGE_LIMIT", 10),
		MaxRetries:   conn.MayInt("MAX_RETRIES", 3),
		RetryBase:    conn.MayDuration("RETRY_BASE", 500*time.Millisecond),
		TokenMargin:  conn.MayDuration("TOKEN_SAFETY_MARGIN", 60*time.Second),
		HTTPTimeout:  conn.MayDuration("HTTP_TIMEOUT", 30*time.Second),
		DryRun:       conn.MayBool("DRYRUN", false),
	}
}
