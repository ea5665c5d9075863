package credentials

import "lecturedl/internal/config"

// FromConfig builds the provider chain used for a run: static values from
// config or the environment, then the OS keyring when enabled, then an
// interactive prompt when prompt is non-nil.
func FromConfig(cfg *config.Config, prompt *Prompt) Chain {
	chain := Chain{Static{User: cfg.Auth.Username, Pass: cfg.Auth.Password}}
	if cfg.Auth.UseKeyring {
		chain = append(chain, NewKeyring(cfg.Auth.KeyringService))
	}
	if prompt != nil {
		chain = append(chain, prompt)
	}
	return chain
}
