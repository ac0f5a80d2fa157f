package config

import (
	"fmt"
	"net/url"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required\nHint: set ASKSQL_API_URL or use --api-url")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", c.APIURL)
	}

	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected text or json)", c.OutputFormat)
	}

	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}

	if port := c.GetServeConfig().Port; port < 0 || port > 65535 {
		return fmt.Errorf("invalid serve.port %d (expected 0-65535)", port)
	}
	return nil
}
