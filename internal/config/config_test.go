package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  driver: sqlite
  dsn: "file:test.db"
jwt:
  secret_key: "unit-test-secret"
  expires_in: 2h
storage:
  type: local
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("期望端口 9090，实际为 %q", cfg.Server.Port)
	}
	if cfg.JWT.ExpiresIn != 2*time.Hour {
		t.Fatalf("期望 expires_in=2h，实际为 %v", cfg.JWT.ExpiresIn)
	}
	if cfg.JWT.Issuer != "DocumentManager" {
		t.Fatalf("期望默认 issuer，实际为 %q", cfg.JWT.Issuer)
	}
	if cfg.Storage.MaxUploadBytes() != 1024<<20 {
		t.Fatalf("期望默认上传上限 1GB，实际为 %d", cfg.Storage.MaxUploadBytes())
	}
	if AppConfig != cfg {
		t.Fatalf("AppConfig 应指向最新加载的配置")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
jwt:
  secret_key: "from-file"
`)
	t.Setenv("GO_DOCMANAGER_JWT_SECRET_KEY", "from-env")
	t.Setenv("GO_DOCMANAGER_ADMIN_USERNAME", "root")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWT.SecretKey != "from-env" {
		t.Fatalf("环境变量应覆盖配置文件，实际为 %q", cfg.JWT.SecretKey)
	}
	if cfg.Admin.Username != "root" {
		t.Fatalf("期望 admin.username=root，实际为 %q", cfg.Admin.Username)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing secret", "database:\n  driver: sqlite\n"},
		{"unknown driver", "database:\n  driver: oracle\njwt:\n  secret_key: x\n"},
		{"unknown storage", "database:\n  driver: sqlite\njwt:\n  secret_key: x\nstorage:\n  type: ftp\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("期望配置校验失败")
			}
		})
	}
}
