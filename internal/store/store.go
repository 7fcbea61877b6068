package store

import (
	"context"

	"github.com/tkiley/jobtrail/internal/model"
)

// ApplicationFilter controls filtering, sorting, and pagination for
// application queries.
type ApplicationFilter struct {
	Status   *model.Status
	Query    *string // search company + job title + subject
	SortBy   string  // "company", "job_title", "status", "date_applied", "last_update"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store defines the persistence interface for application records and
// scan run history.
type Store interface {
	// === Applications ===

	UpsertApplications(ctx context.Context, apps []model.Application) error
	GetApplications(ctx context.Context, opts ApplicationFilter) ([]model.Application, error)
	GetApplicationByKey(ctx context.Context, key model.ApplicationKey) (*model.Application, error)
	DeleteApplication(ctx context.Context, key model.ApplicationKey) error

	// === Scan runs ===

	RecordScanRun(ctx context.Context, run model.ScanRun) error
	LastScanRun(ctx context.Context, account string) (*model.ScanRun, error)

	Close() error
}
