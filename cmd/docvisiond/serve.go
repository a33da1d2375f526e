package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docvision/internal/analysis"
	"docvision/internal/cache"
	"docvision/internal/config"
	"docvision/internal/describe"
	"docvision/internal/httpapi"
	"docvision/internal/imagefetch"
	"docvision/internal/manager"
	"docvision/internal/ollama"
	"docvision/internal/translate"
)

// eventBacklog bounds the events kept for GET /debug/events.
const eventBacklog = 256

// serveFlags override config file values when set explicitly.
type serveFlags struct {
	addr          string
	ollamaURL     string
	defaultModel  string
	summaryModel  string
	warmup        bool
	reqTimeoutSec int
	pullTimeout   int
	maxBodyBytes  int64
	lexicon       string
	detectorURL   string
	translatorURL string
	corsEnabled   bool
	corsOrigins   string
	corsMethods   string
	corsHeaders   string
}

func buildServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  docvisiond serve --config ./docvision.yaml\n  docvisiond serve --ollama-url http://localhost:11434 --warmup",
		Args:    cobra.NoArgs,
	}
	f := bindServeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, root, f)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
	return cmd
}

func bindServeFlags(cmd *cobra.Command) *serveFlags {
	f := &serveFlags{}
	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", config.DefaultAddr, "HTTP listen address, e.g. :8000")
	fl.StringVar(&f.ollamaURL, "ollama-url", "", "Model endpoint base URL (defaults OLLAMA_HOST/OLLAMA_PORT)")
	fl.StringVar(&f.defaultModel, "default-model", "", "Model activated at startup (default: first llava model, else first listed)")
	fl.StringVar(&f.summaryModel, "summary-model", config.DefaultSummaryModel, "Model used by /resumer")
	fl.BoolVar(&f.warmup, "warmup", false, "Preload the active and summary models at startup")
	fl.IntVar(&f.reqTimeoutSec, "request-timeout-sec", config.DefaultRequestTimeoutSec, "Timeout for model-backed requests in seconds")
	fl.IntVar(&f.pullTimeout, "pull-timeout-sec", 0, "Timeout for a whole model download in seconds (0=none)")
	fl.Int64Var(&f.maxBodyBytes, "max-body-bytes", config.DefaultMaxBodyBytes, "Maximum JSON request body size")
	fl.StringVar(&f.lexicon, "lexicon", "", "YAML synonyms file used by /analyze")
	fl.StringVar(&f.detectorURL, "detector-url", "", "Object detection service URL")
	fl.StringVar(&f.translatorURL, "translator-url", "", "Translation service base URL")
	fl.BoolVar(&f.corsEnabled, "cors-enabled", false, "Enable CORS")
	fl.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed origins")
	fl.StringVar(&f.corsMethods, "cors-methods", "", "Comma-separated allowed methods")
	fl.StringVar(&f.corsHeaders, "cors-headers", "", "Comma-separated allowed headers")
	return f
}

// resolveConfig layers file, environment, then explicit flags, and fills defaults.
func resolveConfig(cmd *cobra.Command, root *rootOptions, f *serveFlags) (config.Config, error) {
	var cfg config.Config
	if root.configPath != "" {
		loaded, err := config.Load(root.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	if root.logLevel != "" {
		cfg.LogLevel = root.logLevel
	}
	if root.logFormat != "" {
		cfg.LogFormat = root.logFormat
	}
	cfg = applyServeFlags(cmd, f, cfg)
	return cfg.WithDefaults(), nil
}

func applyServeFlags(cmd *cobra.Command, f *serveFlags, cfg config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("addr") {
		cfg.Addr = f.addr
	}
	if changed("ollama-url") {
		cfg.OllamaURL = f.ollamaURL
	}
	if changed("default-model") {
		cfg.DefaultModel = f.defaultModel
	}
	if changed("summary-model") {
		cfg.SummaryModel = f.summaryModel
	}
	if changed("warmup") {
		cfg.Warmup = f.warmup
	}
	if changed("request-timeout-sec") {
		cfg.RequestTimeoutSec = f.reqTimeoutSec
	}
	if changed("pull-timeout-sec") {
		cfg.PullTimeoutSec = f.pullTimeout
	}
	if changed("max-body-bytes") {
		cfg.MaxBodyBytes = f.maxBodyBytes
	}
	if changed("lexicon") {
		cfg.LexiconPath = f.lexicon
	}
	if changed("detector-url") {
		cfg.DetectorURL = f.detectorURL
	}
	if changed("translator-url") {
		cfg.TranslatorURL = f.translatorURL
	}
	if changed("cors-enabled") {
		cfg.CORS.Enabled = f.corsEnabled
	}
	if changed("cors-origins") {
		cfg.CORS.Origins = splitCSV(f.corsOrigins)
	}
	if changed("cors-methods") {
		cfg.CORS.Methods = splitCSV(f.corsMethods)
	}
	if changed("cors-headers") {
		cfg.CORS.Headers = splitCSV(f.corsHeaders)
	}
	return cfg
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// services is the wired object graph behind the HTTP API.
type services struct {
	backend *ollama.Client
	manager *manager.Manager
	events  *manager.MemoryPublisher
	deps    httpapi.Deps
}

func buildServices(cfg config.Config, log zerolog.Logger) (*services, error) {
	backend := ollama.New(ollama.Config{
		BaseURL:        cfg.OllamaURL,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		Logger:         log,
	})
	events := manager.NewBoundedMemoryPublisher(eventBacklog)
	mgr := manager.NewWithConfig(manager.Config{
		Backend:     backend,
		Logger:      log,
		Publisher:   events,
		PullTimeout: time.Duration(cfg.PullTimeoutSec) * time.Second,
	})

	lexicon := analysis.MapLexicon{}
	if cfg.LexiconPath != "" {
		l, err := analysis.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			_ = mgr.Close()
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lexicon = l
	}
	translator := translate.New(translate.Config{
		Backend: translate.NewHTTPBackend(translate.HTTPConfig{BaseURL: cfg.TranslatorURL}),
		Source:  cfg.TranslatorSource,
		Target:  cfg.TranslatorTarget,
		Logger:  log,
	})
	analyzer := analysis.New(analysis.Config{
		Detector: analysis.NewHTTPDetector(analysis.HTTPDetectorConfig{
			URL:           cfg.DetectorURL,
			MinConfidence: cfg.DetectorMinConfidence,
		}),
		Lexicon:    lexicon,
		Translator: translator,
		Logger:     log,
	})
	describer := describe.New(describe.Config{
		Generator:      backend,
		Models:         mgr,
		Cache:          cache.New(cache.WithLogger(log)),
		SummaryModel:   cfg.SummaryModel,
		ImageMaxDim:    cfg.ImageMaxDim,
		ImageMaxPixels: cfg.ImageMaxPixels,
		Logger:         log,
	})
	images := imagefetch.New(imagefetch.Config{MaxBytes: cfg.ImageMaxBytes, Logger: log})

	return &services{
		backend: backend,
		manager: mgr,
		events:  events,
		deps: httpapi.Deps{
			Models:     mgr,
			Describer:  describer,
			Analyzer:   analyzer,
			Translator: translator,
			Images:     images,
			Backend:    backend,
			Events:     events,
		},
	}, nil
}

// configureHTTP pushes config into the httpapi package settings.
func configureHTTP(cfg config.Config, log zerolog.Logger) {
	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(httpLogLevel(log.GetLevel()))
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRequestTimeoutSeconds(int64(cfg.RequestTimeoutSec))
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
}

// startup selects the default model and optionally warms models up. Failures
// are logged; the API starts regardless so models can be pulled over HTTP.
func startup(ctx context.Context, svc *services, cfg config.Config, log zerolog.Logger) {
	selCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	name, err := svc.manager.SelectDefault(selCtx, cfg.DefaultModel)
	if err != nil {
		log.Warn().Err(err).Msg("no default model selected")
		return
	}
	log.Info().Str("model", name).Msg("default model selected")
	if !cfg.Warmup {
		return
	}
	for _, m := range uniq(name, cfg.SummaryModel) {
		start := time.Now()
		if err := svc.manager.Warmup(ctx, m); err != nil {
			log.Warn().Err(err).Str("model", m).Msg("warmup failed")
			continue
		}
		log.Info().Str("model", m).Dur("dur", time.Since(start)).Msg("model warmed up")
	}
}

func uniq(names ...string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	configureHTTP(cfg, log)
	httpapi.SetBaseContext(ctx)

	svc, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.manager.Close() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		startup(ctx, svc, cfg, log)
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc.deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("ollama", svc.backend.BaseURL()).Msg("docvision listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	wg.Wait()
	log.Info().Msg("docvision stopped")
	return nil
}
