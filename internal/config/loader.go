package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"docvision/internal/common/fsutil"
)

// Defaults applied by WithDefaults when the corresponding field is unset.
const (
	DefaultAddr              = ":8000"
	DefaultOllamaHost        = "localhost"
	DefaultOllamaPort        = "11434"
	DefaultSummaryModel      = "gemma3:4b"
	DefaultRequestTimeoutSec = 300
	DefaultMaxBodyBytes      = 1 << 20
	DefaultImageMaxBytes     = 20 << 20
	DefaultImageMaxDim       = 2048
	DefaultImageMaxPixels    = 50_000_000
	DefaultDetectorURL       = "http://localhost:8001/detect"
	DefaultMinConfidence     = 0.25
	DefaultTranslatorURL     = "http://localhost:5000"
	DefaultTranslatorSource  = "en"
	DefaultTranslatorTarget  = "fr"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// CORSConfig configures the optional CORS middleware.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	OllamaURL    string `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`
	SummaryModel string `json:"summary_model" yaml:"summary_model" toml:"summary_model"`
	// Warmup preloads the active model (and the summary model) at startup.
	Warmup bool `json:"warmup" yaml:"warmup" toml:"warmup"`

	RequestTimeoutSec int   `json:"request_timeout_sec" yaml:"request_timeout_sec" toml:"request_timeout_sec"`
	PullTimeoutSec    int   `json:"pull_timeout_sec" yaml:"pull_timeout_sec" toml:"pull_timeout_sec"`
	MaxBodyBytes      int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	ImageMaxBytes int64 `json:"image_max_bytes" yaml:"image_max_bytes" toml:"image_max_bytes"`
	ImageMaxDim   int   `json:"image_max_dim" yaml:"image_max_dim" toml:"image_max_dim"`

	// ImageMaxPixels bounds width*height of images sent for description.
	ImageMaxPixels int `json:"image_max_pixels" yaml:"image_max_pixels" toml:"image_max_pixels"`

	DetectorURL           string  `json:"detector_url" yaml:"detector_url" toml:"detector_url"`
	DetectorMinConfidence float64 `json:"detector_min_confidence" yaml:"detector_min_confidence" toml:"detector_min_confidence"`

	TranslatorURL    string `json:"translator_url" yaml:"translator_url" toml:"translator_url"`
	TranslatorSource string `json:"translator_source" yaml:"translator_source" toml:"translator_source"`
	TranslatorTarget string `json:"translator_target" yaml:"translator_target" toml:"translator_target"`

	LexiconPath string `json:"lexicon_path" yaml:"lexicon_path" toml:"lexicon_path"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORS CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. OLLAMA_HOST/OLLAMA_PORT
// are honoured only when no explicit ollama_url was configured.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("DOCVISION_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("DOCVISION_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if cfg.OllamaURL == "" {
		host, port := getenv("OLLAMA_HOST"), getenv("OLLAMA_PORT")
		if host != "" || port != "" {
			if host == "" {
				host = DefaultOllamaHost
			}
			if port == "" {
				port = DefaultOllamaPort
			}
			cfg.OllamaURL = "http://" + net.JoinHostPort(host, port)
		}
	}
	return cfg
}

// WithDefaults returns a copy of cfg with every unset field defaulted.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.OllamaURL == "" {
		c.OllamaURL = "http://" + net.JoinHostPort(DefaultOllamaHost, DefaultOllamaPort)
	}
	if c.SummaryModel == "" {
		c.SummaryModel = DefaultSummaryModel
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = DefaultRequestTimeoutSec
	}
	if c.PullTimeoutSec < 0 {
		c.PullTimeoutSec = 0
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ImageMaxBytes <= 0 {
		c.ImageMaxBytes = DefaultImageMaxBytes
	}
	if c.ImageMaxDim <= 0 {
		c.ImageMaxDim = DefaultImageMaxDim
	}
	if c.ImageMaxPixels <= 0 {
		c.ImageMaxPixels = DefaultImageMaxPixels
	}
	if c.DetectorURL == "" {
		c.DetectorURL = DefaultDetectorURL
	}
	if c.DetectorMinConfidence <= 0 {
		c.DetectorMinConfidence = DefaultMinConfidence
	}
	if c.TranslatorURL == "" {
		c.TranslatorURL = DefaultTranslatorURL
	}
	if c.TranslatorSource == "" {
		c.TranslatorSource = DefaultTranslatorSource
	}
	if c.TranslatorTarget == "" {
		c.TranslatorTarget = DefaultTranslatorTarget
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.CORS.Enabled {
		if len(c.CORS.Origins) == 0 {
			c.CORS.Origins = []string{"*"}
		}
		if len(c.CORS.Methods) == 0 {
			c.CORS.Methods = []string{"GET", "POST", "OPTIONS"}
		}
		if len(c.CORS.Headers) == 0 {
			c.CORS.Headers = []string{"*"}
		}
	}
	return c
}
