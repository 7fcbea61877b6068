package track_test

import (
	"testing"
	"time"

	"github.com/tkiley/jobtrail/internal/model"
	"github.com/tkiley/jobtrail/internal/track"
)

func defaultFilter() track.Filter {
	return track.NewFilter(
		model.DefaultExcludedKeywords(),
		model.DefaultExcludedCompanies(),
	)
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
}

// ── Derivation helpers ─────────────────────────────────────────────────────

func TestCompanyFromSender(t *testing.T) {
	cases := []struct {
		sender string
		want   string
	}{
		{"jobs@acme.com", "Acme"},
		{"Acme Jobs <no-reply@acme.greenhouse.io>", "Acme"},
		{"careers@initech.co.uk", "Initech"},
		{"no domain here", "Unknown"},
		{"", "Unknown"},
	}

	for _, tc := range cases {
		if got := track.CompanyFromSender(tc.sender); got != tc.want {
			t.Errorf("CompanyFromSender(%q) = %q, want %q", tc.sender, got, tc.want)
		}
	}
}

func TestTitleFromSubject(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		// split(" at ")[-1] keeps only the text after the last separator.
		{"Thank you for applying at Acme", "Acme"},
		{"Your application for Engineer at Acme at Berlin", "Berlin"},
		{"Application received", "Application received"},
		{"  padded subject  ", "padded subject"},
	}

	for _, tc := range cases {
		if got := track.TitleFromSubject(tc.subject); got != tc.want {
			t.Errorf("TitleFromSubject(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

// ── Ingest ─────────────────────────────────────────────────────────────────

func TestIngest_CreatesRecord(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Thank you for applying at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	})

	apps := agg.Applications()
	if len(apps) != 1 {
		t.Fatalf("got %d records, want 1", len(apps))
	}

	app := apps[0]
	if app.Company != "Acme" || app.JobTitle != "Acme" {
		t.Errorf("record = %+v, want company Acme, title Acme", app)
	}
	if app.Status != model.StatusApplicationSent {
		t.Errorf("Status = %q", app.Status)
	}
}

func TestIngest_SkipsUnlabeled(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Hello",
		Sender:  "jobs@acme.com",
		Date:    day(1),
	})

	if agg.Len() != 0 {
		t.Errorf("got %d records, want 0", agg.Len())
	}
}

func TestIngest_SkipsZeroDate(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Thank you for applying",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
	})

	if agg.Len() != 0 {
		t.Errorf("record created from a message without a date")
	}
}

func TestIngest_ExcludedCompanyDropped(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "We regret to inform you",
		Sender:  "no-reply@amazon.com",
		Status:  model.StatusRejected,
		Date:    day(1),
	})

	if agg.Len() != 0 {
		t.Errorf("excluded company produced a record")
	}
}

func TestIngest_ExcludedKeywordDropped(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Order confirmation - thank you for applying",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	})

	if agg.Len() != 0 {
		t.Errorf("excluded keyword produced a record")
	}
}

func TestIngest_Idempotent(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	msg := track.Message{
		Subject: "Thank you for applying at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	}
	agg.Ingest(msg)
	before := agg.Applications()

	agg.Ingest(msg)
	after := agg.Applications()

	if len(after) != 1 {
		t.Fatalf("got %d records, want 1", len(after))
	}
	if after[0] != before[0] {
		t.Errorf("ingesting the same message twice changed the record: %+v vs %+v",
			before[0], after[0])
	}
}

func TestIngest_LaterInterviewUpdatesRecord(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	// Both subjects end in " at Acme", so they derive the same key.
	agg.Ingest(track.Message{
		Subject: "Thank you for applying at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	})
	agg.Ingest(track.Message{
		Subject: "Interview invitation at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusInterviewRequested,
		Date:    day(2),
	})

	apps := agg.Applications()
	if len(apps) != 1 {
		t.Fatalf("got %d records, want 1", len(apps))
	}

	app := apps[0]
	if app.Status != model.StatusInterviewRequested {
		t.Errorf("Status = %q, want %q", app.Status, model.StatusInterviewRequested)
	}
	if app.Subject != "Interview invitation at Acme" {
		t.Errorf("Subject = %q, want the newest message's subject", app.Subject)
	}
	if !app.LastUpdate.Equal(day(2)) || !app.DateApplied.Equal(day(2)) {
		t.Errorf("dates = %v/%v, want both advanced to %v",
			app.DateApplied, app.LastUpdate, day(2))
	}
}

func TestIngest_SameKeyStatusAdvances(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Update on your application at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	})
	agg.Ingest(track.Message{
		Subject: "Update on your application at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusInterviewRequested,
		Date:    day(2),
	})

	apps := agg.Applications()
	if len(apps) != 1 {
		t.Fatalf("got %d records, want 1", len(apps))
	}

	app := apps[0]
	if app.Status != model.StatusInterviewRequested {
		t.Errorf("Status = %q, want %q", app.Status, model.StatusInterviewRequested)
	}
	if !app.LastUpdate.Equal(day(2)) {
		t.Errorf("LastUpdate = %v, want %v", app.LastUpdate, day(2))
	}
	// DateApplied tracks the message that set the current state.
	if !app.DateApplied.Equal(day(2)) {
		t.Errorf("DateApplied = %v, want %v", app.DateApplied, day(2))
	}
}

func TestIngest_OlderMessageIgnored(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{
		Subject: "Update at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusInterviewRequested,
		Date:    day(5),
	})
	agg.Ingest(track.Message{
		Subject: "Update at Acme",
		Sender:  "jobs@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    day(1),
	})

	app := agg.Applications()[0]
	if app.Status != model.StatusInterviewRequested {
		t.Errorf("older message overwrote newer record: %+v", app)
	}
}

func TestIngest_MonotonicRegardlessOfOrder(t *testing.T) {
	messages := []track.Message{
		{Subject: "Role at Acme", Sender: "a@acme.com", Status: model.StatusApplicationSent, Date: day(3)},
		{Subject: "Role at Acme", Sender: "a@acme.com", Status: model.StatusRejected, Date: day(7)},
		{Subject: "Role at Acme", Sender: "a@acme.com", Status: model.StatusInterviewRequested, Date: day(5)},
	}

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}
	for _, order := range orders {
		agg := track.NewAggregator(defaultFilter())
		for _, i := range order {
			agg.Ingest(messages[i])
		}

		app := agg.Applications()[0]
		if !app.LastUpdate.Equal(day(7)) {
			t.Errorf("order %v: LastUpdate = %v, want max timestamp %v",
				order, app.LastUpdate, day(7))
		}
		if app.Status != model.StatusRejected {
			t.Errorf("order %v: Status = %q, want the newest message's status",
				order, app.Status)
		}
	}
}

func TestIngest_TimestampsNormalizedToUTC(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	est := time.FixedZone("EST", -5*3600)
	agg.Ingest(track.Message{
		Subject: "Role at Acme",
		Sender:  "a@acme.com",
		Status:  model.StatusApplicationSent,
		Date:    time.Date(2026, 8, 1, 18, 0, 0, 0, est),
	})

	app := agg.Applications()[0]
	if app.LastUpdate.Location() != time.UTC {
		t.Errorf("LastUpdate location = %v, want UTC", app.LastUpdate.Location())
	}
	if app.LastUpdate.Hour() != 23 {
		t.Errorf("LastUpdate = %v, want 23:00 UTC", app.LastUpdate)
	}
}

func TestApplications_SortedNewestFirst(t *testing.T) {
	agg := track.NewAggregator(defaultFilter())

	agg.Ingest(track.Message{Subject: "Role at Acme", Sender: "a@acme.com", Status: model.StatusApplicationSent, Date: day(1)})
	agg.Ingest(track.Message{Subject: "Role at Initech", Sender: "a@initech.com", Status: model.StatusApplicationSent, Date: day(3)})
	agg.Ingest(track.Message{Subject: "Role at Hooli", Sender: "a@hooli.com", Status: model.StatusApplicationSent, Date: day(2)})

	apps := agg.Applications()
	if len(apps) != 3 {
		t.Fatalf("got %d records", len(apps))
	}
	if apps[0].Company != "Initech" || apps[2].Company != "Acme" {
		t.Errorf("unexpected order: %s, %s, %s",
			apps[0].Company, apps[1].Company, apps[2].Company)
	}
}
