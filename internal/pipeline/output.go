package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Output file names under the run's output directory.
const (
	ProjectsFile  = "projects.csv"
	LocationsFile = "locations.csv"
	ResourcesFile = "resource_capacity.csv"
)

// Write serializes the canonical tables as CSV under dir, creating it
// if needed.
func (o *Output) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create output dir %s", dir)
	}
	if err := writeCSV(filepath.Join(dir, ProjectsFile), o.Projects); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, LocationsFile), o.Locations); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, ResourcesFile), o.Resources); err != nil {
		return err
	}
	zap.L().Info("canonical tables written",
		zap.String("run_id", o.RunID),
		zap.String("dir", dir),
	)
	return nil
}

// writeCSV marshals a slice of tagged structs to one CSV file. An empty
// slice still produces the header row.
func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if len(rows) == 0 {
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return eris.Wrapf(err, "pipeline: write header %s", path)
		}
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrapf(err, "pipeline: write row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "pipeline: flush %s", path)
	}
	return f.Close()
}
