package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capsle/assets"
	"github.com/robalobadob/capsle/internal/config"
	"github.com/robalobadob/capsle/internal/daily"
	"github.com/robalobadob/capsle/internal/roster"
)

// loadConfig reads .env and the environment, then configures logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg)
	return cfg, nil
}

// buildLoader picks the roster source named by ROSTER_SOURCE.
func buildLoader(cfg config.Config) (roster.Loader, error) {
	if cfg.RosterSource == config.SourceStatic {
		if cfg.RosterFile != "" {
			return roster.StaticFileLoader(cfg.RosterFile, cfg.Locale()), nil
		}
		data, err := assets.RosterDocument()
		if err != nil {
			return nil, fmt.Errorf("read bundled roster: %w", err)
		}
		return roster.NewStaticLoader("bundled", data, cfg.Locale()), nil
	}

	var (
		raw []byte
		err error
	)
	if cfg.RosterSchemaFile != "" {
		raw, err = os.ReadFile(cfg.RosterSchemaFile)
	} else {
		raw, err = assets.APISchema()
	}
	if err != nil {
		return nil, fmt.Errorf("read api schema: %w", err)
	}
	schema, err := roster.ParseSchema(raw, cfg.Locale())
	if err != nil {
		return nil, fmt.Errorf("api schema: %w", err)
	}
	return roster.NewAPILoader(cfg.RosterAPIURL, cfg.RosterLimit, cfg.RosterHTTPTimeout, schema), nil
}

// buildPicker turns the daily settings into a Picker.
func buildPicker(cfg config.Config) (daily.Picker, error) {
	strategy, err := daily.ParseStrategy(cfg.DailyStrategy)
	if err != nil {
		return daily.Picker{}, err
	}
	return daily.Picker{Strategy: strategy, Salt: cfg.DailySalt, Location: cfg.Location()}, nil
}

// openResults returns the Postgres results store when RESULTS_DATABASE_URL is
// set and the SQLite one otherwise. The returned func releases it.
func openResults(ctx context.Context, cfg config.Config, db *sql.DB) (daily.ResultStore, func(), error) {
	if cfg.ResultsURL == "" {
		return daily.NewSQLStore(db), func() {}, nil
	}
	pg, err := daily.NewPGStore(ctx, cfg.ResultsURL)
	if err != nil {
		return nil, nil, fmt.Errorf("results database: %w", err)
	}
	log.Info().Msg("daily results stored in postgres")
	return pg, pg.Close, nil
}
