package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://player:secret@db:5432/player")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Media.MaxUploadBytes() != 512<<20 {
		t.Fatalf("upload limit = %d", cfg.Media.MaxUploadBytes())
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadBuildsURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "player")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "media")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "postgresql://player:pw@db:5432/media?sslmode=disable"
	if cfg.Database.URL != want {
		t.Fatalf("url = %q, want %q", cfg.Database.URL, want)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			Server:   ServerConfig{Port: 8080},
			Security: SecurityConfig{JWTSecret: "0123456789abcdef"},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
			Media:    MediaConfig{MaxUploadMB: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: "STORE_DRIVER"},
		{name: "short secret", mutate: func(c *Config) { c.Security.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "PORT"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "bad upload limit", mutate: func(c *Config) { c.Media.MaxUploadMB = 0 }, wantErr: "MAX_UPLOAD_MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" http://a , ,http://b,")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("got %v", got)
	}
}
