// Package sync runs mailbox scans in the background and feeds their
// results to the Bubble Tea runtime as messages.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/scan"
	"github.com/tkiley/jobtrail/internal/store"
	"github.com/tkiley/jobtrail/internal/track"
)

// ScanState represents the current state of the background scan.
type ScanState int

const (
	ScanIdle ScanState = iota
	ScanRunning
	ScanFailed
)

// ScanStatus holds the state of the most recent scan.
type ScanStatus struct {
	State    ScanState
	LastScan time.Time
	Error    error
}

// ScanProgressMsg is a tea.Msg sent as a running scan advances.
type ScanProgressMsg struct {
	Seen    int
	Matched int
	Total   int
}

// AuthErrorMsg is a tea.Msg sent when the IMAP server rejects the
// account's credentials.
type AuthErrorMsg struct {
	Account string
	Message string
}

// ScanResultMsg is a tea.Msg sent when a scan completes.
type ScanResultMsg struct {
	Run          model.ScanRun
	Applications []model.Application
	Error        error
	AuthError    *AuthErrorMsg
}

// scanTimeout is the maximum time allowed for a full mailbox scan.
const scanTimeout = 5 * time.Minute

// Runner orchestrates background mailbox scans. At most one scan runs
// at a time; extra triggers while a scan is in flight are ignored.
type Runner struct {
	store  store.Store
	filter model.FilterConfig

	resultCh chan tea.Msg
	mu       gosync.Mutex
	status   ScanStatus
	scanning bool
}

// New creates a Runner backed by the given store. The filter settings
// are applied to every scan's aggregation pass.
func New(s store.Store, filter model.FilterConfig) *Runner {
	return &Runner{
		store:    s,
		filter:   filter,
		resultCh: make(chan tea.Msg, 16),
	}
}

// TriggerScan starts a background scan of the account's mailbox and
// returns a subscription command that delivers progress and result
// messages. Returns nil when a scan is already running.
func (r *Runner) TriggerScan(
	scanner *scan.Scanner,
	account string,
	cfg model.ScanConfig,
) tea.Cmd {
	r.mu.Lock()
	if r.scanning {
		r.mu.Unlock()
		return nil
	}
	r.scanning = true
	r.status.State = ScanRunning
	r.status.Error = nil
	r.mu.Unlock()

	go r.runScan(scanner, account, cfg)

	return r.waitForResult()
}

// Status returns the state of the most recent scan.
func (r *Runner) Status() ScanStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// runScan performs a single scan and persists its outcome.
func (r *Runner) runScan(scanner *scan.Scanner, account string, cfg model.ScanConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	startedAt := time.Now().UTC()
	agg := track.NewAggregator(
		track.NewFilter(r.filter.ExcludedKeywords, r.filter.ExcludedCompanies),
	)

	stats, err := scanner.Scan(ctx, cfg, agg, func(p scan.Progress) {
		r.send(ScanProgressMsg{Seen: p.Seen, Matched: p.Matched, Total: p.Total})
	})

	run := model.ScanRun{
		ID:                 uuid.New().String(),
		Account:            account,
		StartedAt:          startedAt,
		FinishedAt:         time.Now().UTC(),
		MessagesSeen:       stats.Seen,
		MessagesClassified: stats.Classified,
		MessagesSkipped:    stats.Skipped,
		Status:             model.ScanStatusOK,
	}

	var apps []model.Application
	if err == nil {
		apps = agg.Applications()
		if upsertErr := r.store.UpsertApplications(ctx, apps); upsertErr != nil {
			err = upsertErr
		} else {
			run.RecordsUpserted = len(apps)
		}
	}

	if err != nil {
		run.Status = model.ScanStatusError
		run.Error = err.Error()
	}

	if recordErr := r.store.RecordScanRun(ctx, run); recordErr != nil && err == nil {
		err = recordErr
	}

	r.finishScan(err)

	msg := ScanResultMsg{
		Run:          run,
		Applications: apps,
		Error:        err,
	}
	if scan.IsAuthError(err) {
		msg.AuthError = &AuthErrorMsg{
			Account: account,
			Message: fmt.Sprintf(
				"%s: authentication failed. Press 'c' to reconfigure.", account,
			),
		}
	}

	r.send(msg)
}

// finishScan records the terminal state of a scan under the lock.
func (r *Runner) finishScan(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scanning = false
	if err != nil {
		r.status.State = ScanFailed
		r.status.Error = err
		return
	}
	r.status.State = ScanIdle
	r.status.LastScan = time.Now()
}

// send delivers a message on the result channel without blocking.
func (r *Runner) send(msg tea.Msg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the scan
	}
}

// waitForResult returns a tea.Cmd that waits for the next message from
// the result channel.
func (r *Runner) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next scan
// message. This should be called after processing a ScanProgressMsg or
// ScanResultMsg to continue listening.
func (r *Runner) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
