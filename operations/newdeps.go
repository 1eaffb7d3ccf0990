package operations

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/dependencies"
)

// Lister is the part of the Endor Labs client the report needs.
type Lister interface {
	DependencyMetadata(ctx context.Context, query cloud.MetadataQuery) ([]cloud.MetadataObject, error)
}

var _ Lister = (*cloud.Endor)(nil)

type NewDependenciesQuery struct {
	Project string
	Date    string
	Branch  string
}

// NewDependencies lists dependencies of a project created on or after the
// query date.
func NewDependencies(ctx context.Context, lister Lister, query NewDependenciesQuery) ([]dependencies.Record, error) {
	defer common.Stopwatch("Listing new dependencies lasted").Debug()

	cutoff, err := dependencies.ParseDate(query.Date)
	if err != nil {
		return nil, err
	}
	objects, err := lister.DependencyMetadata(ctx, cloud.MetadataQuery{
		ProjectUuid: query.Project,
		Since:       cutoff,
		Branch:      query.Branch,
	})
	if err != nil {
		return nil, fmt.Errorf("listing dependency metadata of project %s: %w", query.Project, err)
	}
	records := dependencies.FilterSince(dependencies.NewRecords(objects), cutoff)
	common.Debug("%d of %d dependencies are new since %s.", len(records), len(objects), query.Date)
	return records, nil
}

// WriteReport writes records to the named file, or to sink when the name
// is "-".
func WriteReport(sink io.Writer, filename string, format dependencies.Format, records []dependencies.Record) error {
	if filename == "-" {
		return dependencies.Write(sink, format, records)
	}
	if directory := filepath.Dir(filename); len(directory) > 0 {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return err
		}
	}
	target, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := dependencies.Write(target, format, records); err != nil {
		target.Close()
		return err
	}
	return target.Close()
}

// DefaultReports writes the JSON and CSV reports under their default names
// and returns the written file names.
func DefaultReports(outputDir string, query NewDependenciesQuery, records []dependencies.Record) ([]string, error) {
	written := make([]string, 0, 2)
	for _, format := range []dependencies.Format{dependencies.FormatJSON, dependencies.FormatCSV} {
		filename := filepath.Join(outputDir, dependencies.OutputFilename(query.Project, query.Date, query.Branch, format))
		if err := WriteReport(nil, filename, format, records); err != nil {
			return written, err
		}
		written = append(written, filename)
	}
	return written, nil
}
