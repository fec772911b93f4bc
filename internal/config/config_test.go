package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.LLM.Model == "" {
		t.Error("Expected non-empty model")
	}

	if cfg.Redis.Port <= 0 {
		t.Error("Expected positive Redis port")
	}

	if cfg.MySQL.Port <= 0 {
		t.Error("Expected positive MySQL port")
	}

	if cfg.Server.UploadTimeout <= 0 {
		t.Error("Expected positive upload timeout")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "restaurant")
	t.Setenv("DB_USER", "menu")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("LLM_PROVIDER", ProviderAnthropic)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg := DefaultConfig()

	if cfg.MySQL.Host != "db.internal" {
		t.Errorf("MySQL.Host = %v, want db.internal", cfg.MySQL.Host)
	}
	if cfg.MySQL.Port != 5433 {
		t.Errorf("MySQL.Port = %v, want 5433", cfg.MySQL.Port)
	}
	if cfg.MySQL.Database != "restaurant" || cfg.MySQL.User != "menu" || cfg.MySQL.Password != "secret" {
		t.Errorf("MySQL = %+v, want values from env", cfg.MySQL)
	}
	if cfg.LLM.Provider != ProviderAnthropic {
		t.Errorf("LLM.Provider = %v, want %v", cfg.LLM.Provider, ProviderAnthropic)
	}
	if cfg.LLM.APIKey != "sk-ant-test" {
		t.Errorf("LLM.APIKey = %v, want sk-ant-test", cfg.LLM.APIKey)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %v, want 123:abc", cfg.Telegram.Token)
	}
}

func TestDefaultConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg := DefaultConfig()
	if cfg.MySQL.Port != 3306 {
		t.Errorf("MySQL.Port = %v, want 3306", cfg.MySQL.Port)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("MENU_TEST_KEY", "expanded-key")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
llm:
  provider: anthropic
  api_key: ${MENU_TEST_KEY}
  timeout: 15s
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLM.APIKey != "expanded-key" {
		t.Errorf("LLM.APIKey = %v, want expanded-key", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("LLM.Timeout = %v, want 15s", cfg.LLM.Timeout)
	}
	// ファイルにないセクションはデフォルトのまま
	if cfg.MySQL.Port != 3306 {
		t.Errorf("MySQL.Port = %v, want default 3306", cfg.MySQL.Port)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("Server.MaxUploadBytes = %v, want default", cfg.Server.MaxUploadBytes)
	}
}

func TestLoad_ProviderFromFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		llmModel  string
		wantKey   string
		wantModel string
	}{
		{
			name:      "正常系: anthropicのみ指定でキーとモデルが追従",
			content:   "llm:\n  provider: anthropic\n",
			wantKey:   "sk-ant",
			wantModel: "claude-haiku-4-5-20251001",
		},
		{
			name:      "正常系: geminiのみ指定でキーとモデルが追従",
			content:   "llm:\n  provider: gemini\n",
			wantKey:   "gm-key",
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "正常系: ファイルのapi_keyとmodelが優先",
			content:   "llm:\n  provider: anthropic\n  api_key: file-key\n  model: claude-custom\n",
			wantKey:   "file-key",
			wantModel: "claude-custom",
		},
		{
			name:      "正常系: LLM_MODEL環境変数はプロバイダー変更後も有効",
			content:   "llm:\n  provider: anthropic\n",
			llmModel:  "claude-env-model",
			wantKey:   "sk-ant",
			wantModel: "claude-env-model",
		},
		{
			name:      "境界値: 既定と同じプロバイダーなら環境変数の値のまま",
			content:   "llm:\n  provider: openai\n",
			wantKey:   "sk-openai",
			wantModel: "gpt-4o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", "")
			t.Setenv("LLM_MODEL", tt.llmModel)
			t.Setenv("OPENAI_API_KEY", "sk-openai")
			t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
			t.Setenv("GEMINI_API_KEY", "gm-key")

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.LLM.APIKey != tt.wantKey {
				t.Errorf("LLM.APIKey = %v, want %v", cfg.LLM.APIKey, tt.wantKey)
			}
			if cfg.LLM.Model != tt.wantModel {
				t.Errorf("LLM.Model = %v, want %v", cfg.LLM.Model, tt.wantModel)
			}
		})
	}
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("llm:\n  provider: mistral\n"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Expected error for unsupported provider, got nil")
	}
}

func TestSave(t *testing.T) {
	cfg := DefaultConfig()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// ファイルが存在することを確認
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	// 読み込んで確認
	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loadedCfg.LLM.Model != cfg.LLM.Model {
		t.Error("Loaded config does not match saved config")
	}
	if loadedCfg.Server.UploadTimeout != cfg.Server.UploadTimeout {
		t.Errorf("UploadTimeout = %v, want %v", loadedCfg.Server.UploadTimeout, cfg.Server.UploadTimeout)
	}
}

func TestSave_InvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	// 無効なパス（書き込み不可）
	err := cfg.Save("/invalid/path/that/does/not/exist/config.yaml")
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// 無効なYAMLファイルを作成
	err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
	if err != nil {
		t.Fatalf("Failed to create invalid YAML file: %v", err)
	}

	// 無効なYAMLの場合はエラーを返すことを確認
	_, err = Load(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("MENU_DOTENV_PROBE=loaded\n"), 0600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("MENU_DOTENV_PROBE") })

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MENU_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("MENU_DOTENV_PROBE = %q, want loaded", got)
	}

	// 存在しないファイルは無視される
	if err := LoadDotEnv(filepath.Join(tmpDir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv() missing file error = %v", err)
	}
}
