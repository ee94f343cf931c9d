package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/logger"
)

// cli carries state shared by the subcommands once PersistentPreRunE has run.
type cli struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "site",
		Short: "EU Clones catalog site",
		Long: `site serves the EU Clones catalog of EU-hosted software alternatives,
reading tools and shared page content from the configured content backend.
It can also export the whole catalog as static HTML.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.initialize()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml)")

	root.AddCommand(newServeCmd(c), newExportCmd(c), newSlugsCmd(c))
	return root
}

func (c *cli) initialize() error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Service.Debug})
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = log.With(zap.String("service", cfg.Service.Name))
	return nil
}
