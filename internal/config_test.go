package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/theme"
	pkgconfig "github.com/starford/echonotes/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	sc := cfg.Dashboard.ShellConfig(cfg.Graph)
	if sc.SaveDelay != 500*time.Millisecond || sc.IndexThreshold != 200 || sc.DefaultColor != theme.DefaultColor {
		t.Errorf("shell config = %+v", sc)
	}
}

func TestDashboardConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DashboardConfig)
	}{
		{"bad color", func(c *DashboardConfig) { c.DefaultColor = "navy" }},
		{"no timeout", func(c *DashboardConfig) { c.SaveTimeout = 0 }},
		{"negative retries", func(c *DashboardConfig) { c.SaveRetries = -1 }},
		{"negative delay", func(c *DashboardConfig) { c.SaveDelay = -time.Second }},
		{"duplicate folder", func(c *DashboardConfig) {
			c.Folders = []models.Folder{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}
		}},
		{"unnamed folder", func(c *DashboardConfig) { c.Folders = []models.Folder{{ID: "1"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Dashboard
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGraphConfig_Rejects(t *testing.T) {
	cfg := GraphConfig{IndexThreshold: -1, SSEThrottle: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative threshold should fail")
	}
	cfg = GraphConfig{SSEThrottle: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("tiny throttle should fail")
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("ECHONOTES_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
vault:
  path: /tmp/vault
sqlite:
  path: /tmp/echonotes.db
auth:
  mode: token
  token: ${ECHONOTES_TEST_TOKEN}
dashboard:
  save_delay: 0s
  save_timeout: 2s
  save_retries: 1
  seed_samples: false
  default_color: "#0f766e"
  folders:
    - id: inbox
      name: Inbox
graph:
  index_threshold: 0
  sse_throttle: 250ms
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	want := DashboardConfig{
		SaveTimeout:  2 * time.Second,
		SaveRetries:  1,
		DefaultColor: "#0f766e",
		Folders:      []models.Folder{{ID: "inbox", Name: "Inbox"}},
	}
	if diff := cmp.Diff(want, cfg.Dashboard); diff != "" {
		t.Errorf("dashboard (-want +got):\n%s", diff)
	}
	if cfg.Graph.SSEThrottle != 250*time.Millisecond || cfg.Graph.IndexThreshold != 0 {
		t.Errorf("graph = %+v", cfg.Graph)
	}
}
