package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve counties for an existing locations table",
	Long: `Re-runs geographic resolution on a locations.csv produced by an earlier
normalize run, useful after updating the county reference or alias table.
Rows that already carry a county FIPS are resolved again from scratch.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("out")
		if output == "" {
			output = input
		}

		locations, err := readLocations(input)
		if err != nil {
			return err
		}

		resolver, cleanup, err := buildResolver()
		if err != nil {
			return err
		}
		defer cleanup()
		if resolver == nil {
			return eris.New("geocode: reference.counties_csv must be configured")
		}

		// Resolution starts from the raw names only.
		for i := range locations {
			locations[i] = model.Location{
				ProjectID:     locations[i].ProjectID,
				RawStateName:  locations[i].RawStateName,
				RawCountyName: locations[i].RawCountyName,
			}
		}

		if err := resolver.Resolve(ctx, locations); err != nil {
			return eris.Wrap(err, "geocode")
		}
		if err := writeLocations(output, locations); err != nil {
			return err
		}

		resolved := 0
		for i := range locations {
			if locations[i].Resolved() {
				resolved++
			}
		}
		fmt.Printf("resolved %d of %d locations, wrote %s\n", resolved, len(locations), output)
		return nil
	},
}

func init() {
	geocodeCmd.Flags().String("input", "", "locations.csv to resolve")
	geocodeCmd.Flags().String("out", "", "output path (default: overwrite input)")
	_ = geocodeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(geocodeCmd)
}

func readLocations(path string) ([]model.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: read %s", path)
	}
	var locations []model.Location
	if err := csvutil.Unmarshal(data, &locations); err != nil {
		return nil, eris.Wrapf(err, "geocode: decode %s", path)
	}
	return locations, nil
}

func writeLocations(path string, locations []model.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "geocode: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for i := range locations {
		if err := enc.Encode(locations[i]); err != nil {
			return eris.Wrapf(err, "geocode: write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "geocode: flush %s", path)
	}
	return f.Close()
}
