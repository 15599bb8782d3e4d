package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"pgprobe/pgprobe/internal/config"
	"pgprobe/pgprobe/internal/http"
	"pgprobe/pgprobe/internal/service"

	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("connectivity check failed")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "pgprobe",
		Short: "Check that the configured PostgreSQL database is reachable",
		Long: `pgprobe reads DB_USER, DB_PASSWORD, DB_HOST, DB_PORT and DB_NAME from the
environment (or a .env file), builds a postgresql:// connection URL, opens a
single connection and releases it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cfg, out)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "key=value file to populate the environment from (default .env)")

	root.AddCommand(newServeCmd(&envFile))
	return root
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /healthz, running the connectivity check per request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}

			engine := http.NewServer(service.NewChecker(cfg))
			return engine.Run(cfg.BindAddr())
		},
	}
}

func loadConfig(envFile string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadFile(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Println(err)
	}
	return cfg, err
}

func runCheck(ctx context.Context, cfg config.Config, out io.Writer) error {
	rep := service.NewChecker(cfg, service.WithProgress(out)).Check(ctx)

	if !rep.OK() {
		return fmt.Errorf("%w: %s", errCheckFailed, rep.Stage)
	}
	return nil
}
