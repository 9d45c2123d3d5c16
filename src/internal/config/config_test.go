package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainerrors "github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "botiplist.toml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return configFile
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/file.toml")
	if err == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if !domainerrors.IsCode(err, domainerrors.ErrCodeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	configFile := writeConfig(t, `[general
	output_path = "/tmp/list.csv"`)

	if _, err := LoadConfig(configFile); err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	configFile := writeConfig(t, `[general]
output_pth = "list.csv"`)

	if _, err := LoadConfig(configFile); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestLoadConfig_AddCommentIsStrictBoolean(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    bool
		wantErr bool
	}{
		{name: "true", value: "true", want: true},
		{name: "false", value: "false", want: false},
		{name: "integer one", value: "1", wantErr: true},
		{name: "string one", value: `"1"`, wantErr: true},
		{name: "string true", value: `"true"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfig(t, "[general]\nadd_comment = "+tt.value+"\n")
			cfg, err := LoadConfig(configFile)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for add_comment = %s", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.General.AddComment != tt.want {
				t.Errorf("AddComment = %v, want %v", cfg.General.AddComment, tt.want)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configFile := writeConfig(t, "")

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Expected no error: %v", err)
	}

	if cfg.General.IPVersion != 46 {
		t.Errorf("Expected default ip_version 46, got %d", cfg.General.IPVersion)
	}
	if cfg.General.AddComment {
		t.Errorf("Expected add_comment to default to false")
	}
	if cfg.General.FetchTimeoutSeconds != DefaultFetchTimeoutSeconds {
		t.Errorf("Expected default timeout, got %d", cfg.General.FetchTimeoutSeconds)
	}
	want := filepath.Join(filepath.Dir(configFile), DefaultOutputFile)
	if got := cfg.GetAbsOutputPath(); got != want {
		t.Errorf("Expected output path %s, got %s", want, got)
	}
	if !cfg.Server.WatchEnabled() {
		t.Errorf("Expected artifact watcher to be enabled by default")
	}
	if cfg.Verify.Resolver != DefaultResolver {
		t.Errorf("Expected default resolver, got %s", cfg.Verify.Resolver)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected defaults to validate: %v", err)
	}
}

func TestLoadConfig_StaticListOrder(t *testing.T) {
	configFile := writeConfig(t, `[general]
output_path = "out/list.csv"

[[static_list]]
name = "zeta"
cidrs = ["10.0.0.1/32", "10.0.0.2/32"]

[[static_list]]
name = "alpha"
cidrs = ["192.0.2.0/24"]`)

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Expected no error: %v", err)
	}
	if len(cfg.StaticLists) != 2 {
		t.Fatalf("Expected 2 static lists, got %d", len(cfg.StaticLists))
	}
	if cfg.StaticLists[0].Name != "zeta" || cfg.StaticLists[1].Name != "alpha" {
		t.Errorf("Static list order not preserved: %s, %s", cfg.StaticLists[0].Name, cfg.StaticLists[1].Name)
	}
	if got := cfg.StaticLists[0].CIDRs; len(got) != 2 || got[1] != "10.0.0.2/32" {
		t.Errorf("Unexpected cidrs: %v", got)
	}
	want := filepath.Join(filepath.Dir(configFile), "out", "list.csv")
	if got := cfg.GetAbsOutputPath(); got != want {
		t.Errorf("Expected output path %s, got %s", want, got)
	}
}

func TestLoadConfig_RelativePath(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[general]\nip_version = 4\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tmpDir)

	cfg, err := LoadConfig("config.toml")
	if err != nil {
		t.Fatalf("Expected no error for relative path: %v", err)
	}
	if !filepath.IsAbs(cfg.GetConfigDir()) {
		t.Errorf("Expected absolute config dir, got %s", cfg.GetConfigDir())
	}
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Default(dir)
	if err != nil {
		t.Fatalf("Expected no error: %v", err)
	}
	if got := cfg.GetAbsOutputPath(); got != filepath.Join(dir, DefaultOutputFile) {
		t.Errorf("Unexpected output path %s", got)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected default config to validate: %v", err)
	}
}

func TestSerializeConfig(t *testing.T) {
	cfg, _ := Default(t.TempDir())
	cfg.StaticLists = []*StaticListConfig{{Name: "custom", CIDRs: []string{"10.0.0.1/32"}}}

	buf, err := cfg.SerializeConfig()
	if err != nil {
		t.Fatalf("Failed to serialize config: %v", err)
	}

	content := buf.String()
	for _, want := range []string{"ip_version = 46", "[[static_list]]", "10.0.0.1/32"} {
		if !strings.Contains(content, want) {
			t.Errorf("Serialized config does not contain %q:\n%s", want, content)
		}
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "..", "botiplist.example.toml"))
	if err != nil {
		t.Fatalf("Expected no error for example config: %v", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("Expected example config to validate: %v", err)
	}
	if !cfg.General.AddComment {
		t.Errorf("Expected example config to enable add_comment")
	}
	if len(cfg.StaticLists) != 1 || cfg.StaticLists[0].Name != "jetpack" {
		t.Errorf("Unexpected static lists in example config")
	}
	if cfg.Firewall == nil || len(cfg.Firewall.IPTablesRules) != 1 {
		t.Errorf("Expected one firewall rule in example config")
	}
}
