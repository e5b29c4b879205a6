package bootstrap

import (
	"strings"
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "teamspace_test",
		SessionKey:    "a-perfectly-reasonable-32-char-key!",
		SessionName:   "teamspace-session",
		BaseURL:       "http://localhost:3000",
		SiteName:      "TeamSpace",
	}
}

func TestValidateConfig_OK(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(coreCfg, testAppConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := testAppConfig()
	appCfg.MongoURI = "http://not-a-mongo-uri"

	err := ValidateConfig(coreCfg, appCfg, testLogger())
	if err == nil {
		t.Fatal("expected error for non-mongodb URI")
	}
	if !strings.Contains(err.Error(), "MongoDB URI") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateConfig_PartialGoogleCredentials(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}

	appCfg := testAppConfig()
	appCfg.GoogleClientID = "client-id-only"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Error("expected error when only google_client_id is set")
	}

	appCfg = testAppConfig()
	appCfg.GoogleClientSecret = "secret-only"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Error("expected error when only google_client_secret is set")
	}

	appCfg = testAppConfig()
	appCfg.GoogleClientID = "client-id"
	appCfg.GoogleClientSecret = "secret"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err != nil {
		t.Errorf("expected paired credentials to validate, got %v", err)
	}
}

func TestValidateConfig_DefaultSessionKeyInProd(t *testing.T) {
	appCfg := testAppConfig()
	appCfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, testLogger()); err != nil {
		t.Errorf("default key should be allowed outside production, got %v", err)
	}
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, appCfg, testLogger()); err == nil {
		t.Error("expected default session key to be rejected in production")
	}
}
