package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raysh454/kanshi/internal/config"
	"github.com/raysh454/kanshi/internal/extract"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// TestLoad_Complete verifies a full config parses with all sections
func TestLoad_Complete(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
settings:
  check_interval: 300
  data_dir: "/tmp/kanshi-test"
  log_level: "debug"
  webhook_url: "https://discord.com/api/webhooks/x"
  listen_addr: "127.0.0.1:9000"
  email:
    smtp_server: "smtp.example.com"
    smtp_port: 587
    username: "u"
    password: "p"
    from_addr: "from@example.com"
    to_addr: "to@example.com"
targets:
  - name: "Docs"
    url: "https://example.com/docs"
    mode: "selector"
    selector: ".content"
    interval: 120
    ignore:
      - ".ads"
      - "#banner"
    headers:
      Authorization: "Bearer tok"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.CheckInterval != 300 || cfg.Settings.LogLevel != "debug" {
		t.Errorf("settings wrong: %+v", cfg.Settings)
	}
	if cfg.Settings.Email == nil || cfg.Settings.Email.SMTPPort != 587 {
		t.Errorf("email config wrong: %+v", cfg.Settings.Email)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(cfg.Targets))
	}
	tgt := cfg.Targets[0]
	if tgt.Mode != extract.ModeSelector || tgt.Selector != ".content" || tgt.Interval != 120 {
		t.Errorf("target wrong: %+v", tgt)
	}
	if len(tgt.Ignore) != 2 || tgt.Headers["Authorization"] != "Bearer tok" {
		t.Errorf("target ignore/headers wrong: %+v", tgt)
	}
}

// TestLoad_Defaults verifies omitted settings get defaults and mode falls
// back to text
func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
targets:
  - name: "Plain"
    url: "https://example.com"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.CheckInterval != 60 || cfg.Settings.DataDir != "./data" || cfg.Settings.LogLevel != "info" {
		t.Errorf("defaults wrong: %+v", cfg.Settings)
	}
	if cfg.Targets[0].Mode != extract.ModeText {
		t.Errorf("default mode = %q, want text", cfg.Targets[0].Mode)
	}
}

// TestLoad_Rejections exercises the validation failures
func TestLoad_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate name case-insensitive",
			yaml: `
targets:
  - name: "Site"
    url: "https://a.example.com"
  - name: "site"
    url: "https://b.example.com"
`,
			wantErr: "already used",
		},
		{
			name: "storage token collision",
			yaml: `
targets:
  - name: "My Site"
    url: "https://a.example.com"
  - name: "my_site"
    url: "https://b.example.com"
`,
			wantErr: "collides",
		},
		{
			name: "selector mode without selector",
			yaml: `
targets:
  - name: "S"
    url: "https://example.com"
    mode: "selector"
`,
			wantErr: "requires a selector",
		},
		{
			name: "unknown mode",
			yaml: `
targets:
  - name: "S"
    url: "https://example.com"
    mode: "regex"
`,
			wantErr: "unknown mode",
		},
		{
			name: "missing url",
			yaml: `
targets:
  - name: "S"
`,
			wantErr: "url is required",
		},
		{
			name: "unknown key",
			yaml: `
settings:
  check_intervall: 60
targets:
  - name: "S"
    url: "https://example.com"
`,
			wantErr: "field check_intervall not found",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.yaml)
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

// TestFindTarget verifies case-insensitive lookup
func TestFindTarget(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
targets:
  - name: "My Site"
    url: "https://example.com"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FindTarget("my site") == nil {
		t.Error("case-insensitive lookup failed")
	}
	if cfg.FindTarget("other") != nil {
		t.Error("lookup matched a nonexistent target")
	}
}

// TestWriteSample verifies the sample config is itself loadable
func TestWriteSample(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "Example Site" {
		t.Errorf("unexpected sample targets: %+v", cfg.Targets)
	}
}
