package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "JWT_SECRET", "JWT_EXPIRES_IN", "MONGO_DATABASE", "USER_CACHE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.MongoDatabase != "blog" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.JWTExpiresIn != time.Hour || cfg.ShutdownTimeout != 10*time.Second || cfg.UserCacheSize != 1024 {
		t.Errorf("Unexpected duration defaults: %+v", cfg)
	}
	if cfg.JWTSecret == "" {
		t.Error("Development should fall back to a local JWT secret")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/blog")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected Validate to reject a missing JWT secret outside development")
	}

	cfg.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"JWT_EXPIRES_IN":   "forever",
		"SHUTDOWN_TIMEOUT": "10",
		"USER_CACHE_SIZE":  "lots",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}

func TestValidate_RequiresDatabases(t *testing.T) {
	cfg := &Config{JWTSecret: "x", JWTExpiresIn: time.Hour, UserCacheSize: 1}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error without POSTGRES_CONN_STR")
	}
	cfg.PostgresConnStr = "postgres://localhost/blog"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error without MONGO_URI")
	}
}
