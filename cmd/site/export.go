package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/export"
	"github.com/SirClappington/euclones/internal/services"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		outDir  string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the whole catalog to static HTML",
		Long: `export writes index.html, tools/index.html, tools/<slug>/index.html for
every tool and 404.html into the output directory, replacing its contents.
With --publish the result is uploaded to the configured storage bucket.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir == "" {
				outDir = c.cfg.Export.OutputDir
			}
			return c.export(cmd.Context(), outDir, publish)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from export.output_dir)")
	cmd.Flags().BoolVar(&publish, "publish", false, "upload the export to the storage bucket")
	return cmd
}

func (c *cli) export(ctx context.Context, outDir string, publish bool) error {
	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := export.New(a.content, a.renderer, c.logger, a.metrics).Export(ctx, outDir)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, slug := range result.Skipped {
		c.logger.Warn("Tool not exported", zap.String("slug", slug))
	}

	if !publish {
		return nil
	}

	publisher, err := services.NewStoragePublisher(ctx, c.cfg.Firestore.CredentialsFile, c.cfg.Firestore.BucketName, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	if _, err := export.Publish(ctx, publisher, result.Dir); err != nil {
		return err
	}
	return nil
}
