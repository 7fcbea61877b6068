package model

import "time"

// Scan run outcomes.
const (
	ScanStatusOK    = "ok"
	ScanStatusError = "error"
)

// ScanRun records one completed mailbox scan, successful or not.
type ScanRun struct {
	ID         string    `db:"id"`
	Account    string    `db:"account"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`

	MessagesSeen       int `db:"messages_seen"`
	MessagesClassified int `db:"messages_classified"`
	MessagesSkipped    int `db:"messages_skipped"`
	RecordsUpserted    int `db:"records_upserted"`

	Status string `db:"status"`
	Error  string `db:"error"`
}
