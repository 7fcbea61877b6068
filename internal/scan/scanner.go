// Package scan drives a mailbox scan: it fetches message batches over
// IMAP, feeds them through normalization and classification, and
// ingests the results into an aggregator.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/tkiley/jobtrail/internal/classify"
	"github.com/tkiley/jobtrail/internal/mail"
	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/track"
)

// AuthError indicates that the IMAP server rejected the credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Progress reports how far a running scan has advanced. Total is the
// number of candidate messages returned by the server search.
type Progress struct {
	Seen    int
	Matched int
	Total   int
}

// Stats summarizes a completed scan.
type Stats struct {
	// Seen is how many messages were fetched and examined.
	Seen int

	// Classified is how many messages matched a status pattern.
	Classified int

	// Skipped is how many messages were dropped as malformed
	// (failed fetch, missing envelope, unparseable date).
	Skipped int
}

// Scanner connects to a single IMAP mailbox and scans it for
// job-application messages.
type Scanner struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string

	normalizer *mail.Normalizer
	classifier *classify.Classifier
}

// NewScanner creates a Scanner for the given account. The password is
// passed separately because it lives in the keyring, not the config.
func NewScanner(
	account model.AccountConfig,
	password string,
	normalizer *mail.Normalizer,
	classifier *classify.Classifier,
) *Scanner {
	return &Scanner{
		host:       account.Host,
		port:       account.Port,
		username:   account.Username,
		password:   password,
		tls:        account.TLS,
		mailbox:    account.Mailbox,
		normalizer: normalizer,
		classifier: classifier,
	}
}

// connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout on the returned client.
func (s *Scanner) connect(_ context.Context) (*imapclient.Client, error) {
	addr := s.host + ":" + s.port

	var client *imapclient.Client
	var err error

	if s.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(s.username, s.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Message: fmt.Sprintf(
				"authentication failed for %s: %v", s.username, err,
			),
		}
	}

	return client, nil
}

// Validate verifies credentials by connecting, authenticating, and
// selecting the configured mailbox. Returns the username on success.
func (s *Scanner) Validate(ctx context.Context) (string, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(s.mailbox, nil).Wait(); err != nil {
		return "", fmt.Errorf("selecting %s: %w", s.mailbox, err)
	}

	return s.username, nil
}

// Scan searches the mailbox for messages within the lookback window,
// fetches them in bounded batches newest-first, and ingests each
// classified message into agg. Individual malformed messages are
// skipped; no further batches are fetched once a message older than
// the window is observed or the message cap is reached. onProgress
// may be nil.
func (s *Scanner) Scan(
	ctx context.Context,
	cfg model.ScanConfig,
	agg *track.Aggregator,
	onProgress func(Progress),
) (Stats, error) {
	var stats Stats

	client, err := s.connect(ctx)
	if err != nil {
		return stats, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(s.mailbox, nil).Wait(); err != nil {
		return stats, fmt.Errorf("selecting %s: %w", s.mailbox, err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.LookbackDays)
	criteria := &imap.SearchCriteria{
		Since: cutoff,
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return stats, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	total := len(uids)
	if total == 0 {
		return stats, nil
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 50
	}

	// UIDs come back in ascending order; walk batches from the end so
	// the newest messages are processed first and an out-of-window
	// message can end the scan.
	for end := total; end > 0; end -= batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		start := end - batchSize
		if start < 0 {
			start = 0
		}

		done, err := s.scanBatch(client, uids[start:end], cutoff, cfg, agg, &stats)
		if err != nil {
			return stats, err
		}

		if onProgress != nil {
			onProgress(Progress{
				Seen:    stats.Seen,
				Matched: stats.Classified,
				Total:   total,
			})
		}

		if done {
			break
		}
	}

	return stats, nil
}

// scanBatch fetches and processes one batch of UIDs against the shared
// client. It returns true when the scan should stop: an out-of-window
// message was seen or the message cap was reached.
func (s *Scanner) scanBatch(
	client *imapclient.Client,
	batch []imap.UID,
	cutoff time.Time,
	cfg model.ScanConfig,
	agg *track.Aggregator,
	stats *Stats,
) (bool, error) {
	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(batch...), fetchOpts)

	var bufs []*imapclient.FetchMessageBuffer
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			stats.Skipped++
			continue
		}
		bufs = append(bufs, buf)
	}

	if err := fetchCmd.Close(); err != nil {
		return false, fmt.Errorf("fetching batch: %w", err)
	}

	return s.ingestBuffers(bufs, bodySection, cutoff, cfg, agg, stats), nil
}

// ingestBuffers runs the fetched messages through normalization,
// classification, and aggregation. It returns true when no further
// batches should be fetched: an out-of-window message was seen or the
// message cap was reached. The server's SINCE search is date-granular,
// so a batch can hold an out-of-window message followed by newer
// in-window ones; such a message is skipped in place and the rest of
// the batch is still processed.
func (s *Scanner) ingestBuffers(
	bufs []*imapclient.FetchMessageBuffer,
	bodySection *imap.FetchItemBodySection,
	cutoff time.Time,
	cfg model.ScanConfig,
	agg *track.Aggregator,
	stats *Stats,
) bool {
	stop := false
	for _, buf := range bufs {
		if buf.Envelope == nil || buf.Envelope.Date.IsZero() {
			// No recency can be established for this message.
			stats.Skipped++
			continue
		}

		date := buf.Envelope.Date
		if date.Before(cutoff) {
			stop = true
			continue
		}

		stats.Seen++

		sender := ""
		if len(buf.Envelope.From) > 0 {
			sender = buf.Envelope.From[0].Addr()
		}

		normalized := s.normalizer.Normalize(mail.RawMessage{
			Subject: buf.Envelope.Subject,
			From:    sender,
			Date:    date,
			Raw:     buf.FindBodySection(bodySection),
		})

		status, ok := s.classifier.Classify(normalized.Subject, normalized.Body)
		if !ok {
			continue
		}
		stats.Classified++

		agg.Ingest(track.Message{
			Subject: normalized.Subject,
			Sender:  sender,
			Status:  status,
			Date:    date,
		})

		if cfg.MaxMessages > 0 && stats.Seen >= cfg.MaxMessages {
			return true
		}
	}

	return stop
}
