package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/config"
	"github.com/ridopark/options-engine/internal/external/filecandles"
	"github.com/ridopark/options-engine/internal/external/nsehttp"
	"github.com/ridopark/options-engine/internal/logger"
	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/orchestrator"
	"github.com/ridopark/options-engine/internal/tradelog"
)

// app bundles the engine's wired dependencies, built once per CLI
// invocation and shared by whichever subcommand runs.
type app struct {
	cfg          *config.Config
	log          zerolog.Logger
	journal      *tradelog.Journal
	orchestrator *orchestrator.Orchestrator
	indices      []models.Index
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.InitLogger(cfg.LogLevel, cfg.Environment)
	log := logger.New(cfg.Environment, cfg.LogLevel)

	journal, err := tradelog.NewJournal(cfg.Engine.JournalPath, log)
	if err != nil {
		return nil, fmt.Errorf("open trade journal: %w", err)
	}

	candles := filecandles.New(cfg.Engine.CandleDir, log)

	chain, err := nsehttp.New(log)
	if err != nil {
		return nil, fmt.Errorf("build chain client: %w", err)
	}

	// No broker transport is wired (the broker transport itself is out of
	// scope); a nil dispatcher makes the orchestrator log decisions
	// without attempting order placement.
	orch := orchestrator.New(orchestrator.Config{
		RiskProfile:        models.RiskProfile(cfg.Engine.RiskProfile),
		AccountBalance:     cfg.Engine.AccountBalance,
		RiskPerTrade:       cfg.Engine.RiskPerTrade,
		RealTradingEnabled: cfg.Broker.EnableRealTrading,
		ReportDir:          cfg.Engine.ReportDir,
	}, candles, chain, nil, nil, journal, log)

	indices := make([]models.Index, 0, len(cfg.Engine.Indices))
	for _, name := range cfg.Engine.Indices {
		indices = append(indices, models.Index(name))
	}

	return &app{cfg: cfg, log: log, journal: journal, orchestrator: orch, indices: indices}, nil
}

func (a *app) session() orchestrator.Session {
	return orchestrator.Session{
		StartHour:   a.cfg.Session.StartHour,
		StartMinute: a.cfg.Session.StartMinute,
		EndHour:     a.cfg.Session.EndHour,
		EndMinute:   a.cfg.Session.EndMinute,
	}
}
