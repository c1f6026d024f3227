package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/UnknownOlympus/plutus/internal/models"
)

// Entry is one line of the batch summary CSV.
type Entry struct {
	Row        int    `csv:"row"`
	EmployeeID string `csv:"employee_id"`
	Name       string `csv:"name"`
	Email      string `csv:"email"`
	Status     string `csv:"status"`
	Stage      string `csv:"failed_stage"`
	File       string `csv:"file"`
	Error      string `csv:"error"`
}

type Entries []Entry

// NewEntries converts the results of a run into summary lines, in source order.
func NewEntries(summary models.BatchSummary) Entries {
	entries := make(Entries, 0, len(summary.Results))
	for _, res := range summary.Results {
		entry := Entry{
			Row:        res.Row,
			EmployeeID: res.EmployeeID,
			Name:       res.Name,
			Email:      res.Email,
			Status:     string(res.Status),
			Stage:      string(res.Stage),
			File:       res.Path,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		entries = append(entries, entry)
	}

	return entries
}

// WriteSummary writes the batch summary CSV to path, replacing any previous report.
// The report is written next to path first and only moved into place once it is fully flushed.
func WriteSummary(path string, summary models.BatchSummary) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create report '%s': %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	entries := NewEntries(summary)
	if err = gocsv.MarshalFile(&entries, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write report '%s': %w", path, err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to flush report '%s': %w", path, err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace report '%s': %w", path, err)
	}

	return nil
}
