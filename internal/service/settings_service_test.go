package service_test

import (
	"strings"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/testutil"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

func makeFernetKey(t *testing.T) string {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return key.Encode()
}

// TestSettingsService tests API key storage and provider switching.
//
// WHY: The API key is a secret; it must be encrypted at rest, restored
// across restarts, and never required for the service to come up.
func TestSettingsService(t *testing.T) {
	t.Run("stores the key encrypted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settingsRepo := repository.NewSettingsRepository(db)
		resolver := testutil.NewTestResolver(t, nil, nil)

		svc, err := service.NewSettingsService(settingsRepo, resolver, yahoo.NewFinanceClient(), makeFernetKey(t))
		if err != nil {
			t.Fatalf("NewSettingsService() returned unexpected error: %v", err)
		}

		if err := svc.SetAPIKey("secret-key-123"); err != nil {
			t.Fatalf("SetAPIKey() returned unexpected error: %v", err)
		}

		stored, err := settingsRepo.GetSetting("alpha_vantage_api_key")
		if err != nil {
			t.Fatalf("GetSetting() returned unexpected error: %v", err)
		}
		if strings.Contains(stored, "secret-key-123") {
			t.Error("Expected stored value to be encrypted, found plaintext")
		}

		settings, err := svc.GetPricingSettings()
		if err != nil {
			t.Fatalf("GetPricingSettings() returned unexpected error: %v", err)
		}
		if settings.Provider != "alphavantage" || !settings.KeyConfigured {
			t.Errorf("Expected alphavantage provider with key configured, got %+v", settings)
		}
	})

	t.Run("restores the provider across restarts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settingsRepo := repository.NewSettingsRepository(db)
		resolver := testutil.NewTestResolver(t, nil, nil)
		key := makeFernetKey(t)

		first, err := service.NewSettingsService(settingsRepo, resolver, yahoo.NewFinanceClient(), key)
		if err != nil {
			t.Fatalf("NewSettingsService() returned unexpected error: %v", err)
		}
		if err := first.SetAPIKey("secret-key-123"); err != nil {
			t.Fatalf("SetAPIKey() returned unexpected error: %v", err)
		}

		// A second instance simulates a process restart over the same store.
		second, err := service.NewSettingsService(settingsRepo, resolver, yahoo.NewFinanceClient(), key)
		if err != nil {
			t.Fatalf("NewSettingsService() returned unexpected error: %v", err)
		}
		if err := second.LoadStoredProvider(); err != nil {
			t.Fatalf("LoadStoredProvider() returned unexpected error: %v", err)
		}

		settings, err := second.GetPricingSettings()
		if err != nil {
			t.Fatalf("GetPricingSettings() returned unexpected error: %v", err)
		}
		if settings.Provider != "alphavantage" {
			t.Errorf("Expected alphavantage provider after restore, got %q", settings.Provider)
		}
	})

	t.Run("clearing the key falls back to yahoo", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settingsRepo := repository.NewSettingsRepository(db)
		resolver := testutil.NewTestResolver(t, nil, nil)

		svc, err := service.NewSettingsService(settingsRepo, resolver, yahoo.NewFinanceClient(), makeFernetKey(t))
		if err != nil {
			t.Fatalf("NewSettingsService() returned unexpected error: %v", err)
		}
		if err := svc.SetAPIKey("secret-key-123"); err != nil {
			t.Fatalf("SetAPIKey() returned unexpected error: %v", err)
		}
		if err := svc.SetAPIKey(""); err != nil {
			t.Fatalf("SetAPIKey(\"\") returned unexpected error: %v", err)
		}

		settings, err := svc.GetPricingSettings()
		if err != nil {
			t.Fatalf("GetPricingSettings() returned unexpected error: %v", err)
		}
		if settings.Provider != "yahoo" || settings.KeyConfigured {
			t.Errorf("Expected yahoo provider with no key, got %+v", settings)
		}
	})

	t.Run("rejects storing a key without key material", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settingsRepo := repository.NewSettingsRepository(db)
		resolver := testutil.NewTestResolver(t, nil, nil)

		svc, err := service.NewSettingsService(settingsRepo, resolver, yahoo.NewFinanceClient(), "")
		if err != nil {
			t.Fatalf("NewSettingsService() returned unexpected error: %v", err)
		}
		if err := svc.SetAPIKey("secret-key-123"); err == nil {
			t.Error("Expected error without FERNET_KEY, got nil")
		}
	})
}
