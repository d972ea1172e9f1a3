package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Editor: EditorConfig{MaxSlots: 20, SessionTTL: time.Hour, Store: StoreDatabase},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"默认合法", func(c *Config) {}, false},
		{"密钥为空", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"周次上限为零", func(c *Config) { c.Editor.MaxSlots = 0 }, true},
		{"会话时长为零", func(c *Config) { c.Editor.SessionTTL = 0 }, true},
		{"未知存储", func(c *Config) { c.Editor.Store = "file" }, true},
		{"远程缺少地址", func(c *Config) { c.Editor.Store = StoreRemote }, true},
		{"远程配置完整", func(c *Config) {
			c.Editor.Store = StoreRemote
			c.Editor.Remote.BaseURL = "http://api.local"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("期望 wantErr=%v，实际 err=%v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
auth:
  jwt_secret: "file-secret-key-0123456789"
editor:
  max_slots: 16
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Editor.MaxSlots != 16 {
		t.Errorf("期望 max_slots=16，实际=%d", cfg.Editor.MaxSlots)
	}
	if cfg.Editor.SessionTTL != 2*time.Hour {
		t.Errorf("期望默认 session_ttl=2h，实际=%s", cfg.Editor.SessionTTL)
	}
	if cfg.Editor.Store != StoreDatabase {
		t.Errorf("期望默认 store=database，实际=%s", cfg.Editor.Store)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: \"file-secret-key-0123456789\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURSE_EDITOR_MAX_SLOTS", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Editor.MaxSlots != 30 {
		t.Errorf("环境变量应覆盖配置，期望 30，实际=%d", cfg.Editor.MaxSlots)
	}
}
