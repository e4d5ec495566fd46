package extractor

import (
	"fmt"
	"sort"
	"sync"

	"sitecheck/internal/config"
	"sitecheck/internal/port"
)

// ProviderFactory creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.DocumentParser, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name. Provider packages
// call it from init.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ProviderConfig) (port.DocumentParser, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewParserChain builds the configured primary/secondary/tertiary providers
// behind a FallbackParser. A single configured provider is returned as is.
func NewParserChain(cfg *config.ExtractorConfig) (port.DocumentParser, error) {
	tiers := []*config.ProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var parsers []port.DocumentParser
	var names []string
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		p, err := NewParser(tier)
		if err != nil {
			return nil, err
		}
		parsers = append(parsers, p)
		names = append(names, tier.Provider)
	}

	if len(parsers) == 1 {
		return parsers[0], nil
	}
	return NewFallbackParser(parsers, names), nil
}
