package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
cluster: hearth-eu
server:
  port: 9090
  secret: shhh
journal:
  driver: sqlite
  dsn: hearth.db
sessions:
  idle_timeout: 5m
`))
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if cfg.Cluster != "hearth-eu" || cfg.Server.Port != 9090 || cfg.Server.Secret != "shhh" {
		t.Errorf("parsed config = %+v", cfg)
	}
	if cfg.Journal.Driver != DriverSQLite || cfg.Journal.DSN != "hearth.db" {
		t.Errorf("journal config = %+v", cfg.Journal)
	}
	if cfg.Sessions.IdleTimeout.Std() != 5*time.Minute {
		t.Errorf("idle_timeout = %v", cfg.Sessions.IdleTimeout.Std())
	}
	if cfg.Sessions.MaxAge.Std() != 12*time.Hour {
		t.Errorf("max_age default not kept: %v", cfg.Sessions.MaxAge.Std())
	}
	if cfg.Locale != "en" {
		t.Errorf("locale default not kept: %q", cfg.Locale)
	}
}

func TestFromYAMLErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad driver", "journal:\n  driver: postgres\n", "journal.driver"},
		{"sqlite without dsn", "journal:\n  driver: sqlite\n", "journal.dsn"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad duration", "sessions:\n  max_age: soon\n", "invalid duration"},
		{"not yaml", "{{{", "invalid config yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Journal.Driver != DriverMemory {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
