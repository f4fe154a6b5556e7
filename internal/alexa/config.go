package alexa

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultSkillID = "amzn1.ask.1p.smarthome"
	defaultTimeout = 15 * time.Second
)

var regionEndpoints = map[string]string{
	"na": "https://na-api-alexa.amazon.com",
	"eu": "https://eu-api-alexa.amazon.co.uk",
	"fe": "https://fe-api-alexa.amazon.co.jp",
	// Older app builds still talk to the pre-split hosts.
	"na-legacy": "https://pitangui.amazon.com",
	"eu-legacy": "https://alexa.amazon.co.uk",
}

// Config defines runtime configuration for the Alexa client.
type Config struct {
	// Host is the API host captured from the app session, with or
	// without a scheme. Takes precedence over Region.
	Host string
	// Region picks a well-known host through regionEndpoints.
	Region string
	// SkillID scopes the entities listing.
	SkillID string
	// DeletePrefix is the captured skill token that deletion URLs for
	// entities-sourced appliances start with.
	DeletePrefix string
	Timeout      time.Duration

	// BaseURL is resolved from Host or Region by ResolveConfig.
	BaseURL string
}

func ResolveConfig(cfg Config) (Config, error) {
	host := strings.TrimSpace(cfg.Host)
	region := strings.ToLower(strings.TrimSpace(cfg.Region))

	baseURL := ""
	switch {
	case host != "":
		if strings.Contains(host, "://") {
			baseURL = host
		} else {
			baseURL = "https://" + host
		}
	case region != "":
		endpoint, ok := regionEndpoints[region]
		if !ok {
			return Config{}, fmt.Errorf("unknown alexa region %q", region)
		}
		baseURL = endpoint
	default:
		return Config{}, fmt.Errorf("alexa host or region is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	skillID := strings.TrimSpace(cfg.SkillID)
	if skillID == "" {
		skillID = defaultSkillID
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return Config{
		Host:         host,
		Region:       region,
		SkillID:      skillID,
		DeletePrefix: strings.TrimSpace(cfg.DeletePrefix),
		Timeout:      timeout,
		BaseURL:      baseURL,
	}, nil
}
