package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

const settingAlphaVantageKey = "alpha_vantage_api_key"

// SettingsService manages runtime settings, currently the equities quote
// provider. The Alpha Vantage API key is stored fernet-encrypted; the
// decrypted key never leaves this service.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	resolver     *pricing.Resolver
	fallback     *yahoo.FinanceClient
	keys         []*fernet.Key
}

// NewSettingsService creates a new SettingsService. fernetKey is the
// base64 key from configuration; it may be empty, in which case storing
// an API key is rejected.
func NewSettingsService(
	settingsRepo *repository.SettingsRepository,
	resolver *pricing.Resolver,
	fallback *yahoo.FinanceClient,
	fernetKey string,
) (*SettingsService, error) {
	s := &SettingsService{
		settingsRepo: settingsRepo,
		resolver:     resolver,
		fallback:     fallback,
	}
	if fernetKey != "" {
		keys, err := fernet.DecodeKeys(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidKeyMaterial, err)
		}
		s.keys = keys
	}
	return s, nil
}

// PricingSettings describes the active equities quote provider without
// exposing key material.
type PricingSettings struct {
	Provider      string `json:"provider"`
	KeyConfigured bool   `json:"keyConfigured"`
}

// GetPricingSettings reports which equities provider is active.
func (s *SettingsService) GetPricingSettings() (PricingSettings, error) {
	_, err := s.settingsRepo.GetSetting(settingAlphaVantageKey)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return PricingSettings{Provider: "yahoo"}, nil
	}
	if err != nil {
		return PricingSettings{}, err
	}
	return PricingSettings{Provider: "alphavantage", KeyConfigured: true}, nil
}

// SetAPIKey stores the Alpha Vantage API key encrypted at rest and swaps
// the resolver's equities source over to Alpha Vantage. An empty key
// clears the setting and falls back to the Yahoo client.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)

	if apiKey == "" {
		if err := s.settingsRepo.DeleteSetting(settingAlphaVantageKey); err != nil {
			return err
		}
		s.resolver.SetEquities(s.fallback)
		return nil
	}

	if len(s.keys) == 0 {
		return fmt.Errorf("%w: FERNET_KEY is not configured", apperrors.ErrInvalidKeyMaterial)
	}

	token, err := fernet.EncryptAndSign([]byte(apiKey), s.keys[0])
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}
	if err := s.settingsRepo.SetSetting(settingAlphaVantageKey, string(token)); err != nil {
		return err
	}

	s.resolver.SetEquities(pricing.NewAlphaVantageClient(apiKey))
	return nil
}

// LoadStoredProvider restores the equities source from the settings
// store at startup. A missing or undecryptable key leaves the Yahoo
// fallback in place; the service must come up either way.
func (s *SettingsService) LoadStoredProvider() error {
	token, err := s.settingsRepo.GetSetting(settingAlphaVantageKey)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(s.keys) == 0 {
		return fmt.Errorf("%w: stored API key present but FERNET_KEY is not configured", apperrors.ErrInvalidKeyMaterial)
	}

	apiKey := fernet.VerifyAndDecrypt([]byte(token), 0, s.keys)
	if apiKey == nil {
		return fmt.Errorf("%w: stored API key failed verification", apperrors.ErrInvalidKeyMaterial)
	}

	s.resolver.SetEquities(pricing.NewAlphaVantageClient(string(apiKey)))
	return nil
}
