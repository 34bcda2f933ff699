package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/geo"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/pipeline"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/pkg/geocode"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Run the full normalization pipeline on one raw extract",
	Long: `Reads a raw vendor extract (CSV or XLSX), applies the vendor profile,
and writes the canonical projects, locations, and resource_capacity
tables. Unmapped resource codes abort the run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		input, _ := cmd.Flags().GetString("input")
		profilePath, _ := cmd.Flags().GetString("profile")
		outDir, _ := cmd.Flags().GetString("out")
		sheet, _ := cmd.Flags().GetString("sheet")
		skipRows, _ := cmd.Flags().GetInt("skip-rows")

		if outDir == "" {
			outDir = cfg.Pipeline.OutputDir
		}

		raw, err := readExtract(input, sheet, skipRows)
		if err != nil {
			return err
		}

		profile := pipeline.DefaultProfile()
		if profilePath != "" {
			profile, err = pipeline.LoadProfile(profilePath)
			if err != nil {
				return err
			}
		}

		opts := []pipeline.Option{pipeline.WithTargetYear(cfg.Pipeline.TargetYear)}
		resolver, cleanup, err := buildResolver()
		if err != nil {
			return err
		}
		defer cleanup()
		if resolver != nil {
			opts = append(opts, pipeline.WithResolver(resolver))
		}

		p, err := pipeline.New(opts...)
		if err != nil {
			return err
		}

		out, err := p.Run(ctx, raw, profile)
		if err != nil {
			return eris.Wrap(err, "normalize")
		}
		if err := out.Write(outDir); err != nil {
			return err
		}

		fmt.Printf("wrote %d projects, %d locations, %d resources to %s\n",
			len(out.Projects), len(out.Locations), len(out.Resources), outDir)
		return nil
	},
}

func init() {
	normalizeCmd.Flags().String("input", "", "raw extract path (.csv or .xlsx)")
	normalizeCmd.Flags().String("profile", "", "vendor profile YAML (default: built-in)")
	normalizeCmd.Flags().String("out", "", "output directory (default: from config)")
	normalizeCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	normalizeCmd.Flags().Int("skip-rows", 0, "XLSX rows to skip before the header")
	_ = normalizeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(normalizeCmd)
}

// readExtract dispatches on the file extension.
func readExtract(path, sheet string, skipRows int) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return table.ReadXLSX(path, table.XLSXOptions{SheetName: sheet, SkipRows: skipRows})
	case ".csv":
		return table.ReadCSV(path)
	default:
		return nil, eris.Errorf("normalize: unsupported extract format %q", filepath.Ext(path))
	}
}

// buildResolver assembles the geographic resolver from config: the FIPS
// reference plus, when a geocoder is configured, the cached HTTP client.
// Returns nil without error when no reference is configured.
func buildResolver() (*geo.Resolver, func(), error) {
	noop := func() {}
	if cfg.Reference.CountiesCSV == "" {
		zap.L().Warn("no county reference configured, skipping geographic resolution")
		return nil, noop, nil
	}

	ref, err := geo.LoadReference(cfg.Reference.CountiesCSV)
	if err != nil {
		return nil, noop, err
	}

	opts := []geo.ResolverOption{geo.WithBatchSize(cfg.Geocoder.BatchSize)}
	cleanup := noop
	if cfg.Geocoder.BaseURL != "" {
		client := geocode.NewClient(cfg.Geocoder.BaseURL,
			geocode.WithAPIKey(cfg.Geocoder.APIKey),
			geocode.WithRateLimit(cfg.Geocoder.RateLimitRPS),
		)
		if cfg.Geocoder.CachePath != "" {
			cache, err := geocode.NewSQLiteCache(cfg.Geocoder.CachePath, cfg.Geocoder.CacheMaxBytes)
			if err != nil {
				return nil, noop, err
			}
			client = geocode.NewCachingClient(client, cache)
			cleanup = func() {
				if err := cache.Close(); err != nil {
					zap.L().Warn("closing geocode cache", zap.Error(err))
				}
			}
		}
		opts = append(opts, geo.WithGeocoder(client))
	}

	resolver, err := geo.NewResolver(ref, opts...)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return resolver, cleanup, nil
}
