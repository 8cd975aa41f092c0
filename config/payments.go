package config

import "strings"

// PaymentsConfig holds the payment processor keys. Only their presence is used here.
type PaymentsConfig struct {
	SecretKey      string `env:"STRIPE_SECRET_KEY"`
	PublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	// LegacyPublishableKey is read for deployments that still expose the key under its frontend name.
	LegacyPublishableKey string `env:"NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY"`
}

// Sanitize trims keys and falls back to the legacy publishable key name.
func (p *PaymentsConfig) Sanitize() {
	p.SecretKey = strings.TrimSpace(p.SecretKey)
	p.PublishableKey = strings.TrimSpace(p.PublishableKey)
	if p.PublishableKey == "" {
		p.PublishableKey = strings.TrimSpace(p.LegacyPublishableKey)
	}
}
