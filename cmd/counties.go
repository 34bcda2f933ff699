package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/geo"
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Manage the authoritative county FIPS reference",
}

var countiesLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Build the county reference CSV from a TIGER/Line shapefile",
	Long: `Reads a Census TIGER/Line county shapefile (tl_*_us_county.shp) and
writes the flat counties CSV the resolver loads at startup. Centroids
come from the INTPT attributes, falling back to the polygon centroid.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shpPath, _ := cmd.Flags().GetString("shapefile")
		outPath, _ := cmd.Flags().GetString("out")

		ref, err := geo.LoadReferenceFromShapefile(shpPath)
		if err != nil {
			return eris.Wrap(err, "counties load")
		}
		zap.L().Info("shapefile loaded", zap.Int("counties", ref.Len()))

		f, err := os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "counties load: create %s", outPath)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		enc := csvutil.NewEncoder(w)
		for _, c := range ref.Counties() {
			if err := enc.Encode(c); err != nil {
				return eris.Wrapf(err, "counties load: write %s", outPath)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return eris.Wrapf(err, "counties load: flush %s", outPath)
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "counties load: close %s", outPath)
		}

		fmt.Printf("wrote %d counties to %s\n", ref.Len(), outPath)
		return nil
	},
}

func init() {
	countiesLoadCmd.Flags().String("shapefile", "", "TIGER/Line county shapefile (.shp)")
	countiesLoadCmd.Flags().String("out", "counties.csv", "output CSV path")
	_ = countiesLoadCmd.MarkFlagRequired("shapefile")
	countiesCmd.AddCommand(countiesLoadCmd)
	rootCmd.AddCommand(countiesCmd)
}
