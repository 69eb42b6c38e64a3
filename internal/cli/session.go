package cli

import (
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/rs/zerolog/log"
)

// sessionOptions lets tests route the CLI through an in-process transport.
var sessionOptions []capi.Option

// newSession creates a Session from the loaded configuration.
func newSession() *capi.Session {
	cfg := GetConfig()
	if cfg == nil {
		cfg = &Config{}
	}
	opts := []capi.Option{
		capi.WithBaseURL(cfg.GetBaseURL()),
		capi.WithLogger(log.Logger),
		capi.WithUserAgent("capi-cli/" + Version),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, capi.WithTimeout(cfg.Timeout))
	}
	if cfg.Retries > 0 {
		opts = append(opts, capi.WithRetries(cfg.Retries))
	}
	opts = append(opts, sessionOptions...)
	return capi.NewSession(capi.Credentials{Username: cfg.Username, Password: cfg.Password}, opts...)
}
