package provider

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/config"
)

// ProviderCreator is a function that creates a provider from configuration
type ProviderCreator func(cfg config.EngineConfig, logger *zap.Logger) (TranscriptionProvider, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function. Provider packages
// call it from init.
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrProviderNotFound, nil,
			"provider type %q not registered (available: %v)", providerType, listLocked())
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted.
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return listLocked()
}

func listLocked() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// Create builds and validates the provider named by cfg.Provider.
func Create(cfg config.EngineConfig, logger *zap.Logger) (TranscriptionProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	creator, err := GetProviderCreator(cfg.Provider)
	if err != nil {
		return nil, err
	}
	p, err := creator(cfg, logger.With(zap.String("provider", cfg.Provider)))
	if err != nil {
		return nil, err
	}
	if err := p.ValidateConfiguration(); err != nil {
		return nil, err
	}
	return p, nil
}
