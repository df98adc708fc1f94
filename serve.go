package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/capsle/assets"
	"github.com/robalobadob/capsle/internal/auth"
	"github.com/robalobadob/capsle/internal/db"
	"github.com/robalobadob/capsle/internal/httpserver"
	"github.com/robalobadob/capsle/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sqlDB, err := db.OpenMigrated(ctx, cfg.DBPath, assets.Migrations())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()

	results, closeResults, err := openResults(ctx, cfg, sqlDB)
	if err != nil {
		return err
	}
	defer closeResults()

	loader, err := buildLoader(cfg)
	if err != nil {
		return err
	}
	picker, err := buildPicker(cfg)
	if err != nil {
		return err
	}

	catalog := httpserver.NewCatalog(loader)
	if ros, err := catalog.Reload(ctx); err != nil {
		// The server still starts; /roster/reload retries.
		log.Error().Err(err).Str("source", cfg.RosterSource).Msg("initial roster load failed")
	} else {
		log.Info().Int("characters", ros.Len()).Str("version", ros.Version()).Msg("roster loaded")
	}

	srv := httpserver.New(httpserver.Deps{
		Catalog:  catalog,
		Sessions: store.NewMemoryStore(),
		Results:  results,
		Auth: auth.NewService(sqlDB, auth.Options{
			Secret:      cfg.JWTSecret,
			ExpiresDays: cfg.JWTExpiresDays,
			CookieName:  cfg.CookieName,
			Secure:      cfg.Production(),
		}),
		Picker:       picker,
		ClientOrigin: cfg.ClientOrigin,
	})
	log.Info().Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("starting capsle")
	return srv.Run(ctx, cfg.Addr())
}
