package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tkiley/jobtrail/internal/export"
	"github.com/tkiley/jobtrail/internal/model"
)

func TestWriteCSV(t *testing.T) {
	apps := []model.Application{
		{
			Company:     "Acme",
			JobTitle:    "Backend Engineer",
			Status:      model.StatusInterviewRequested,
			DateApplied: time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC),
			LastUpdate:  time.Date(2026, 8, 15, 17, 5, 0, 0, time.UTC),
			Subject:     "Interview invitation at Acme",
		},
		{
			Company:     "Globex",
			JobTitle:    "SRE",
			Status:      model.StatusApplicationSent,
			DateApplied: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
			LastUpdate:  time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
			Subject:     "Thank you for applying at Globex",
		},
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, apps); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}

	wantHeader := []string{
		"Company", "Job Title", "Date Applied",
		"Current Status", "Last Update", "Email Subject",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}

	wantFirst := []string{
		"Acme", "Backend Engineer", "2026-07-01",
		"Interview Requested", "2026-08-15", "Interview invitation at Acme",
	}
	if !reflect.DeepEqual(rows[1], wantFirst) {
		t.Errorf("row 1 = %v, want %v", rows[1], wantFirst)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	apps := []model.Application{
		{
			Company:     "Acme",
			JobTitle:    "Backend Engineer",
			Status:      model.StatusRejected,
			DateApplied: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			LastUpdate:  time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
			Subject:     "Your application at Acme",
		},
	}

	if err := export.SaveCSV(path, apps); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back %s: %v", path, err)
	}
	if !strings.Contains(string(data), "Rejected") {
		t.Errorf("expected file to contain the status, got:\n%s", data)
	}
}
