package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/agent"
	"github.com/fyrsmithlabs/tacit/internal/config"
	"github.com/fyrsmithlabs/tacit/internal/events"
	"github.com/fyrsmithlabs/tacit/internal/llm"
	"github.com/fyrsmithlabs/tacit/internal/logging"
	"github.com/fyrsmithlabs/tacit/internal/metrics"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/secrets"
	"github.com/fyrsmithlabs/tacit/internal/telemetry"
)

// mode picks where logs may go. The chat owns the terminal and the MCP
// server owns stdout.
type mode int

const (
	modeServe mode = iota
	modeChat
	modeMCP
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *logging.Logger
	logger    *zap.Logger
	tel       *telemetry.Telemetry
	gen       llm.Generator
	redactor  *secrets.Redactor
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// newApp loads configuration and builds logging, telemetry, the generator
// and the optional event publisher.
func newApp(ctx context.Context, m mode) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	telCfg := telemetry.NewDefaultConfig()
	telCfg.ServiceVersion = version
	if err := cfg.Section("telemetry", telCfg); err != nil {
		return nil, fmt.Errorf("decoding telemetry config: %w", err)
	}

	logCfg := logging.NewDefaultConfig()
	if err := cfg.Section("logging", logCfg); err != nil {
		return nil, fmt.Errorf("decoding logging config: %w", err)
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}

	// Telemetry comes first so the logger can bridge into its provider; it
	// reports its own status once the logger exists.
	tel, err := telemetry.New(ctx, telCfg)
	if err != nil {
		return nil, err
	}
	lp := tel.LoggerProvider()
	if !tel.IsEnabled() {
		logCfg.Output.OTEL = false
		lp = nil
	}
	if err := adjustOutputs(logCfg, m); err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	log, err := logging.NewLogger(logCfg, lp)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := log.Underlying()
	tel.LogStatus(logger)

	a := &app{cfg: cfg, log: log, logger: logger, tel: tel, publisher: events.Nop{}}

	a.gen, err = llm.New(llmConfig(cfg.LLM))
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	a.redactor, err = secrets.New(secrets.Config{
		Enabled:       cfg.Secrets.Enabled,
		AllowlistPath: cfg.Secrets.AllowlistPath,
	}, logger.Named("secrets"))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if cfg.Events.Enabled {
		p, err := events.Connect(cfg.Events.URL, cfg.Events.SubjectPrefix, logger.Named("events"))
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}
		a.publisher = p
	}

	log.Info(ctx, "tacit starting",
		zap.String("version", version),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		logging.Secret("api_key", cfg.LLM.APIKey),
		zap.Bool("events", cfg.Events.Enabled),
		zap.Bool("telemetry", tel.IsEnabled()),
	)
	return a, nil
}

// adjustOutputs keeps logs off streams the front end owns. Chat logs go to
// a file; MCP logs go to stderr unless a file is configured.
func adjustOutputs(cfg *logging.Config, m mode) error {
	switch m {
	case modeChat:
		cfg.Output.Stdout = false
		cfg.Output.Stderr = false
		if cfg.Output.File == "" {
			path, err := defaultLogFile()
			if err != nil {
				return err
			}
			cfg.Output.File = path
		}
	case modeMCP:
		cfg.Output.Stdout = false
		if cfg.Output.File == "" {
			cfg.Output.Stderr = true
		}
	}
	if !cfg.Output.Stdout && !cfg.Output.Stderr && cfg.Output.File == "" && !cfg.Output.OTEL {
		cfg.Output.Stdout = true
	}
	return nil
}

// defaultLogFile is $XDG_STATE_HOME/tacit/tacit.log, falling back to
// ~/.local/state.
func defaultLogFile() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "tacit", "tacit.log"), nil
}

func llmConfig(c config.LLMConfig) llm.Config {
	return llm.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey.Value(),
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout.Duration(),
		MaxRetries:  c.MaxRetries,
		RateLimit:   c.RateLimit,
		Burst:       c.Burst,
		Temperature: c.Temperature,
	}
}

func budgets(c config.AgentConfig) agent.Budgets {
	return agent.Budgets{
		Chat:       c.ChatTokens,
		Initial:    c.InitialTokens,
		Experience: c.ExperienceTokens,
		Synthesis:  c.SynthesisTokens,
	}
}

// newOrchestrator builds one session's orchestrator with the shared
// generator, redactor, metrics and event publisher.
func (a *app) newOrchestrator(sessionID string) *orchestrator.Orchestrator {
	logger := a.logger.Named("orchestrator")
	if sessionID != "" {
		logger = logger.With(zap.String("session.id", sessionID))
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithAgentOptions(
			agent.WithLogger(logger.Named("agent")),
			agent.WithBudgets(budgets(a.cfg.Agent)),
			agent.WithRedactor(a.redactor),
		),
	}
	if a.metrics != nil {
		opts = append(opts, orchestrator.WithGeneratorWrapper(a.metrics.Instrument))
	}

	o := orchestrator.New(a.gen, opts...)
	if a.metrics != nil {
		o.OnTransition(a.metrics.Observe)
	}
	o.OnTransition(events.Listener(a.publisher, sessionID, logger))
	return o
}

// Close releases the publisher, telemetry and log files.
func (a *app) Close(ctx context.Context) {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.tel != nil {
		errs = append(errs, a.tel.Shutdown(context.WithoutCancel(ctx)))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", zap.Error(err))
	}
	_ = a.log.Close()
}
