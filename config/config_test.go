package config

import "testing"

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Database.MaxOpenConns != 7 {
		t.Errorf("max open conns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.SSLMode != "disable" || cfg.Gemini.Model == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("jwt secret not read")
	}
}

func TestDSN(t *testing.T) {
	d := Database{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
