package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_URL": "postgres://erp@localhost/erp",
		"JWT_SECRET":   testSecret,
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "3001" || cfg.Addr() != ":3001" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.Store.Driver != DriverPostgres || cfg.Identity.Provider != ProviderLocal {
		t.Fatalf("unexpected drivers: %+v %+v", cfg.Store, cfg.Identity)
	}
	if cfg.ExternalTimeout != 10*time.Second {
		t.Fatalf("expected 10s external timeout, got %v", cfg.ExternalTimeout)
	}
	if cfg.Identity.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %v", cfg.Identity.TokenTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env should not be production")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                      "8080",
		"ENV":                       "production",
		"STORE_DRIVER":              "mongo",
		"MONGO_URI":                 "mongodb://db:27017/?replicaSet=rs0",
		"MONGO_DB":                  "erp_test",
		"IDENTITY_PROVIDER":         "supabase",
		"SUPABASE_URL":              "https://abc.supabase.co",
		"SUPABASE_ANON_KEY":         "anon",
		"SUPABASE_SERVICE_ROLE_KEY": "service",
		"CORS_ALLOWED_ORIGINS":      "https://erp.example.com,https://admin.example.com",
		"EXTERNAL_CALL_TIMEOUT":     "3s",
		"REDIS_ADDR":                "redis:6379",
		"REDIS_DB":                  "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.IsProduction() || cfg.Port != "8080" {
		t.Fatalf("unexpected server settings: %+v", cfg)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Store.MongoDB != "erp_test" {
		t.Fatalf("unexpected store: %+v", cfg.Store)
	}
	if cfg.Identity.Provider != ProviderSupabase || cfg.Identity.SupabaseURL != "https://abc.supabase.co" {
		t.Fatalf("unexpected identity: %+v", cfg.Identity)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ExternalTimeout != 3*time.Second || cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected timeouts or redis: %v %+v", cfg.ExternalTimeout, cfg.Redis)
	}
}

func TestValidate_RejectsInconsistentSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "postgres without dsn",
			env:  map[string]string{"JWT_SECRET": testSecret},
			want: "DATABASE_URL",
		},
		{
			name: "local provider without secret",
			env:  map[string]string{"DATABASE_URL": "postgres://x"},
			want: "JWT_SECRET",
		},
		{
			name: "short secret",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "short"},
			want: "JWT_SECRET",
		},
		{
			name: "supabase without keys",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "IDENTITY_PROVIDER": "supabase"},
			want: "SUPABASE_URL",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"STORE_DRIVER": "sqlite", "JWT_SECRET": testSecret},
			want: "STORE_DRIVER",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil {
				t.Fatalf("expected an error mentioning %s", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %s, got %v", tc.want, err)
			}
		})
	}
}
