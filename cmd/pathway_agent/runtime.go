package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/skill-pathway/internal/backend"
	"github.com/jonathan/skill-pathway/internal/config"
	"github.com/jonathan/skill-pathway/internal/db"
	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/onboarding"
	"github.com/jonathan/skill-pathway/internal/store"
)

// loadConfig merges the optional config file, the environment and the defaults.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if rootVerbose {
		cfg.Verbose = true
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logging.Logger, error) {
	if !cfg.Verbose {
		return logging.Nop(), nil
	}
	return logging.New(cfg.LogMode)
}

func newBackend(cfg config.Config, logger *logging.Logger) (*backend.Client, error) {
	return backend.New(cfg.APIURL, backend.WithTimeout(cfg.Timeout()), backend.WithLogger(logger))
}

// openStore opens the configured state store. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (store.ProfileStore, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.StoreRedis:
		client, err := store.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.Namespace, cfg.RedisTTL()), func() { _ = client.Close() }, nil
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database.State(cfg.Namespace), database.Close, nil
	default:
		return store.NewFileStore(cfg.StatePath), func() {}, nil
	}
}

// newService builds the onboarding service over the configured store and backend.
func newService(ctx context.Context, cfg config.Config) (*onboarding.Service, *store.Profiles, func(), error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	api, err := newBackend(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	profiles := store.NewProfiles(st, logger)
	svc := onboarding.NewService(profiles, api,
		onboarding.WithLogger(logger),
		onboarding.WithOLevelCap(cfg.OLevelCap),
	)
	cleanup := func() {
		closeStore()
		logger.Sync()
	}
	return svc, profiles, cleanup, nil
}

func readJSONFile(path string, out any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

func markRequired(cmd interface{ MarkFlagRequired(string) error }, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}
