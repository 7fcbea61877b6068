package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	company      TEXT NOT NULL,
	job_title    TEXT NOT NULL,
	status       TEXT NOT NULL,
	date_applied DATETIME NOT NULL,
	last_update  DATETIME NOT NULL,
	subject      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (company, job_title)
);

CREATE TABLE IF NOT EXISTS scan_runs (
	id                  TEXT PRIMARY KEY,
	account             TEXT NOT NULL,
	started_at          DATETIME NOT NULL,
	finished_at         DATETIME NOT NULL,
	messages_seen       INTEGER NOT NULL DEFAULT 0,
	messages_classified INTEGER NOT NULL DEFAULT 0,
	messages_skipped    INTEGER NOT NULL DEFAULT 0,
	records_upserted    INTEGER NOT NULL DEFAULT 0,
	status              TEXT NOT NULL CHECK(status IN ('ok', 'error')),
	error               TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_applications_last_update ON applications(last_update);
CREATE INDEX IF NOT EXISTS idx_scan_runs_account ON scan_runs(account, finished_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
