// Command jobtrail tracks job applications by scanning an IMAP mailbox
// for application, interview, and rejection emails. By default it opens
// an interactive terminal UI; with -scan it runs a one-shot headless
// scan and prints a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/tkiley/jobtrail/internal/app"
	"github.com/tkiley/jobtrail/internal/classify"
	"github.com/tkiley/jobtrail/internal/credential"
	"github.com/tkiley/jobtrail/internal/export"
	"github.com/tkiley/jobtrail/internal/mail"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/scan"
	"github.com/tkiley/jobtrail/internal/store"
	"github.com/tkiley/jobtrail/internal/track"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	headless := flag.Bool("scan", false, "run a one-shot scan and print a report instead of opening the UI")
	outPath := flag.String("out", "", "CSV output path for -scan (defaults to the configured export path)")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobtrail: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(model.DefaultDataPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobtrail: opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *headless {
		if err := runScan(cfg, st, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "jobtrail: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(app.New(st, cfg, *configPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "jobtrail: %v\n", err)
		os.Exit(1)
	}
}

// runScan performs a headless mailbox scan, persists the results, and
// prints a tabular report. When outPath or the configured export path
// is set, it also writes a CSV file.
func runScan(cfg *model.AppConfig, st *store.SQLiteStore, outPath string) error {
	if !cfg.Account.Configured() {
		return fmt.Errorf("no account configured; run jobtrail without -scan to set one up")
	}

	password, err := credential.GetPassword(cfg.Account.Username)
	if err != nil {
		return fmt.Errorf("loading password: %w", err)
	}

	scanner := scan.NewScanner(
		cfg.Account,
		password,
		mail.DefaultNormalizer(),
		classify.New(classify.DefaultRules()),
	)
	agg := track.NewAggregator(
		track.NewFilter(cfg.Filter.ExcludedKeywords, cfg.Filter.ExcludedCompanies),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	startedAt := time.Now().UTC()
	fmt.Fprintf(os.Stderr, "scanning %s on %s...\n", cfg.Account.Mailbox, cfg.Account.Host)

	stats, scanErr := scanner.Scan(ctx, cfg.Scan, agg, func(p scan.Progress) {
		fmt.Fprintf(os.Stderr, "  %d/%d messages, %d matched\n", p.Seen, p.Total, p.Matched)
	})

	run := model.ScanRun{
		ID:                 uuid.New().String(),
		Account:            cfg.Account.Username,
		StartedAt:          startedAt,
		FinishedAt:         time.Now().UTC(),
		MessagesSeen:       stats.Seen,
		MessagesClassified: stats.Classified,
		MessagesSkipped:    stats.Skipped,
		Status:             model.ScanStatusOK,
	}
	if scanErr != nil {
		run.Status = model.ScanStatusError
		run.Error = scanErr.Error()
	}

	if scanErr == nil {
		apps := agg.Applications()
		if err := st.UpsertApplications(ctx, apps); err != nil {
			return fmt.Errorf("saving applications: %w", err)
		}
		run.RecordsUpserted = len(apps)
	}

	if err := st.RecordScanRun(ctx, run); err != nil {
		return fmt.Errorf("recording scan run: %w", err)
	}
	if scanErr != nil {
		return scanErr
	}

	apps, err := st.GetApplications(ctx, store.ApplicationFilter{
		SortBy:   "last_update",
		SortDesc: true,
	})
	if err != nil {
		return fmt.Errorf("loading applications: %w", err)
	}

	printReport(apps, stats)

	if outPath == "" {
		outPath = cfg.Export.Path
	}
	if outPath != "" {
		if err := export.SaveCSV(outPath, apps); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	}

	return nil
}

// printReport writes the tracked applications to stdout as an aligned
// table.
func printReport(apps []model.Application, stats scan.Stats) {
	fmt.Printf(
		"%d messages scanned, %d matched, %d application(s) tracked\n\n",
		stats.Seen, stats.Classified, len(apps),
	)

	if len(apps) == 0 {
		fmt.Println("No job application emails found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMPANY\tJOB TITLE\tSTATUS\tAPPLIED\tLAST UPDATE")
	for _, a := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.Company,
			a.JobTitle,
			a.Status,
			a.DateApplied.Format("2006-01-02"),
			a.LastUpdate.Format("2006-01-02"),
		)
	}
	w.Flush()
}
