package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nollama_url: http://o:1\ndefault_model: llava:7b\npull_timeout_sec: 60\ncors:\n  enabled: true\n  origins: [\"http://a\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.OllamaURL != "http://o:1" || cfg.DefaultModel != "llava:7b" || cfg.PullTimeoutSec != 60 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.Origins) != 1 || cfg.CORS.Origins[0] != "http://a" {
		t.Fatalf("unexpected cors: %+v", cfg.CORS)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","summary_model":"mistral","image_max_dim":512,"warmup":true}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.SummaryModel != "mistral" || cfg.ImageMaxDim != 512 || !cfg.Warmup {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ntranslator_url=\"http://tr\"\ndetector_min_confidence=0.5\n[cors]\nenabled=true\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.TranslatorURL != "http://tr" || cfg.DetectorMinConfidence != 0.5 || !cfg.CORS.Enabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidFormats(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "ollama_url": }`,
		"bad.toml": "addr=:8080\nollama_url\n",
	}
	for name, body := range cases {
		p := writeTempFile(t, d, name, body)
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected unmarshal error", name)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.OllamaURL != "http://localhost:11434" || cfg.SummaryModel != DefaultSummaryModel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RequestTimeoutSec != DefaultRequestTimeoutSec || cfg.PullTimeoutSec != 0 || cfg.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("unexpected timeout/body defaults: %+v", cfg)
	}
	if cfg.ImageMaxPixels != DefaultImageMaxPixels || cfg.ImageMaxDim != DefaultImageMaxDim {
		t.Fatalf("unexpected image defaults: %+v", cfg)
	}
	if cfg.CORS.Enabled || len(cfg.CORS.Origins) != 0 {
		t.Fatalf("cors must stay disabled by default: %+v", cfg.CORS)
	}
	on := Config{CORS: CORSConfig{Enabled: true}}.WithDefaults()
	if len(on.CORS.Origins) != 1 || on.CORS.Origins[0] != "*" {
		t.Fatalf("expected wildcard origin when cors enabled: %+v", on.CORS)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{"OLLAMA_HOST": "ollama", "DOCVISION_ADDR": ":1234"}
	getenv := func(k string) string { return env[k] }
	cfg := ApplyEnv(Config{}, getenv)
	if cfg.OllamaURL != "http://ollama:11434" || cfg.Addr != ":1234" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	// explicit URL wins over OLLAMA_HOST
	cfg = ApplyEnv(Config{OllamaURL: "http://x:1"}, getenv)
	if cfg.OllamaURL != "http://x:1" {
		t.Fatalf("explicit ollama_url overridden: %q", cfg.OllamaURL)
	}
	if got := ApplyEnv(Config{}, func(string) string { return "" }); got.OllamaURL != "" {
		t.Fatalf("expected no url without env, got %q", got.OllamaURL)
	}
}
