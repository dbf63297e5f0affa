package result

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound = errors.New("result not found")

	FetchFailedMsg = "results could not be fetched"

	orderingFields  = []string{"created_at", "student_id", "course", "score"}
	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
)

type (
	Repository interface {
		CreateResults(ctx context.Context, rows ...Result) ([]Result, error)
		QueryResults(ctx context.Context, ordering []core.DBOrdering) ([]Result, error)
		QueryStudentResults(ctx context.Context, studentID string) ([]Result, error)
		GetResult(ctx context.Context, id string) (Result, error)
		DeleteResults(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		// Create inserts one result row per course of the sheet.
		Create(ctx context.Context, sheet NewResultSheet) ([]Result, error)
		// ListAggregated returns the filtered student aggregates.
		// Unless refresh is set, rows come from the last fetched snapshot while it is fresh.
		ListAggregated(ctx context.Context, filter Filter, ordering []core.DBOrdering, refresh bool) (Listing, error)
		StudentResults(ctx context.Context, studentID string) (StudentListing, error)
		Get(ctx context.Context, id string) (Result, error)
		Delete(ctx context.Context, ids ...string) error

		// SummaryReport builds the document of the aggregated results list.
		SummaryReport(ctx context.Context, filter Filter) (Document, error)
		// TranscriptReport builds the document of one student's results.
		TranscriptReport(ctx context.Context, studentID string) (Document, error)

		InvalidateSnapshot()
	}

	service struct {
		repo     Repository
		timeout  time.Duration
		snapshot *cache.Cache // nil when disabled
		now      func() time.Time
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, conf *core.Config) ServiceInterface {
	svc := &service{
		repo:    repo,
		timeout: conf.Database.QueryTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	if ttl := conf.Results.SnapshotTTL; ttl > 0 {
		svc.snapshot = cache.New(ttl, 2*ttl)
	}
	return svc
}

func snapshotKey(ordering []core.DBOrdering) string {
	keys := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		keys = append(keys, ord.String())
	}
	return "rows:" + strings.Join(keys, ",")
}

// rows fetches all result rows, going through the snapshot cache.
func (svc *service) rows(ctx context.Context, ordering []core.DBOrdering, refresh bool) ([]Result, error) {
	ordering = core.AllowedOrderings(ordering, orderingFields...)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}

	key := snapshotKey(ordering)
	if svc.snapshot != nil && !refresh {
		if cached, found := svc.snapshot.Get(key); found {
			return cached.([]Result), nil
		}
	}

	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	rows, err := svc.repo.QueryResults(ctx, ordering)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying results")
	}
	if svc.snapshot != nil {
		svc.snapshot.SetDefault(key, rows)
	}
	return rows, nil
}

func (svc *service) InvalidateSnapshot() {
	if svc.snapshot != nil {
		svc.snapshot.Flush()
	}
}

func (svc *service) Create(ctx context.Context, sheet NewResultSheet) ([]Result, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	rows, err := svc.repo.CreateResults(ctx, sheet.Rows(svc.now())...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating results")
	}
	svc.InvalidateSnapshot()
	return rows, nil
}

func (svc *service) ListAggregated(ctx context.Context, filter Filter, ordering []core.DBOrdering, refresh bool) (Listing, error) {
	rows, err := svc.rows(ctx, ordering, refresh)
	if err != nil {
		return Listing{ListingMeta: core.FailedListingMeta(FetchFailedMsg), Items: []StudentAggregate{}}, err
	}
	items := Summarize(rows, filter)
	return Listing{ListingMeta: core.NewListingMeta(len(items), len(rows)), Items: items}, nil
}

func (svc *service) StudentResults(ctx context.Context, studentID string) (StudentListing, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	rows, err := svc.repo.QueryStudentResults(ctx, core.CleanString(studentID))
	if err != nil {
		return StudentListing{ListingMeta: core.FailedListingMeta(FetchFailedMsg), Items: []Result{}},
			pkgerrors.Wrap(err, "querying student results")
	}
	if rows == nil {
		rows = []Result{}
	}
	return StudentListing{ListingMeta: core.NewListingMeta(len(rows), len(rows)), Items: rows}, nil
}

func (svc *service) Get(ctx context.Context, id string) (Result, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()
	return svc.repo.GetResult(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	if err := svc.repo.DeleteResults(ctx, ids...); err != nil {
		return pkgerrors.Wrap(err, "deleting results")
	}
	svc.InvalidateSnapshot()
	return nil
}

func (svc *service) SummaryReport(ctx context.Context, filter Filter) (Document, error) {
	listing, err := svc.ListAggregated(ctx, filter, nil, false)
	if err != nil {
		return Document{}, err
	}
	return NewSummaryDocument(listing.Items, filter, svc.now()), nil
}

func (svc *service) TranscriptReport(ctx context.Context, studentID string) (Document, error) {
	listing, err := svc.StudentResults(ctx, studentID)
	if err != nil {
		return Document{}, err
	}
	if len(listing.Items) == 0 {
		return Document{}, ErrNotFound
	}
	return NewTranscriptDocument(listing.Items, svc.now()), nil
}
