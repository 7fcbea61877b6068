// Package export writes application records to external formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/tkiley/jobtrail/internal/model"
)

// csvHeader is the fixed column order of the CSV report.
var csvHeader = []string{
	"Company",
	"Job Title",
	"Date Applied",
	"Current Status",
	"Last Update",
	"Email Subject",
}

const dateLayout = "2006-01-02"

// WriteCSV writes the applications to w as a CSV report, header first.
// Dates are rendered as calendar days.
func WriteCSV(w io.Writer, apps []model.Application) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, a := range apps {
		record := []string{
			a.Company,
			a.JobTitle,
			a.DateApplied.Format(dateLayout),
			string(a.Status),
			a.LastUpdate.Format(dateLayout),
			a.Subject,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", a.Company, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// SaveCSV writes the applications to a CSV file at path, replacing any
// existing file.
func SaveCSV(path string, apps []model.Application) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteCSV(f, apps); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}
