package broker

// Config holds configuration for the NATS connection used to publish sync events.
type Config struct {
	// URL is the NATS server URL. Empty disables publishing.
	URL string `mapstructure:"url" default:""`
	// Token is an optional auth token.
	Token string `mapstructure:"token" default:""`
	// Subject is the subject progress events are published on.
	Subject string `mapstructure:"subject" default:"catalog.sync.progress"`
}

// Enabled reports whether a broker URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
