package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flappyv/platform/internal/app"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/pkg/logger"
)

// @title                       Flappy Platform API
// @version                     1.0
// @description                 Authentication, live game settings, skins and statistics for the Flappy game.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:           "flappy",
		Short:         "Flappy game platform services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:       "serve <" + strings.Join(app.Services, "|") + ">",
		Short:     "Run one service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: app.Services,
		RunE:      runServe,
	}

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands",
	}
	adminCmd.AddCommand(
		&cobra.Command{
			Use:   "grant <email>",
			Short: "Grant the admin flag to a user",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runSetAdmin(cmd, args[0], true) },
		},
		&cobra.Command{
			Use:   "revoke <email>",
			Short: "Revoke the admin flag from a user",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runSetAdmin(cmd, args[0], false) },
		},
	)

	rootCmd.AddCommand(serveCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !slices.Contains(app.Services, name) {
		return fmt.Errorf("unknown service %q (use one of %s)", name, strings.Join(app.Services, ", "))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: name,
	})

	svc, err := app.Build(ctx, name, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("service startup failed")
		return err
	}
	return svc.Run(ctx, cfg.Addr(name))
}

func runSetAdmin(cmd *cobra.Command, email string, admin bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Development(), Service: "admin"})

	if err := app.SetAdmin(ctx, cfg, log, email, admin); err != nil {
		return err
	}
	action := "granted to"
	if !admin {
		action = "revoked from"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s %s (effective at next login)\n", action, email)
	return nil
}
