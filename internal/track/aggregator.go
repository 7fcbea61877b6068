// Package track merges classified messages into application records,
// deduplicated by the derived (company, job title) key.
package track

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tkiley/jobtrail/internal/model"
)

// Message is one classified email entering aggregation.
type Message struct {
	Subject string
	Sender  string
	Status  model.Status
	Date    time.Time
}

// Filter drops messages that matched a status pattern but are known to
// be unrelated to job applications. Both lists come from configuration.
type Filter struct {
	keywords  []string
	companies map[string]bool
}

// NewFilter builds a Filter from excluded subject keywords and excluded
// company names. Matching is case-insensitive.
func NewFilter(keywords, companies []string) Filter {
	kw := make([]string, len(keywords))
	for i, k := range keywords {
		kw[i] = strings.ToLower(k)
	}

	cs := make(map[string]bool, len(companies))
	for _, c := range companies {
		cs[strings.ToLower(c)] = true
	}

	return Filter{keywords: kw, companies: cs}
}

// Irrelevant reports whether a message with the given subject and
// derived company should be dropped.
func (f Filter) Irrelevant(subject, company string) bool {
	lowerSubject := strings.ToLower(subject)
	for _, kw := range f.keywords {
		if strings.Contains(lowerSubject, kw) {
			return true
		}
	}
	return f.companies[strings.ToLower(company)]
}

// Aggregator accumulates application records over one scan. It is owned
// and mutated by a single scan loop; concurrent ingestion would need an
// external lock because the recency-guarded upsert is not commutative.
type Aggregator struct {
	filter  Filter
	records map[model.ApplicationKey]model.Application
}

// NewAggregator creates an empty Aggregator with the given filter.
func NewAggregator(filter Filter) *Aggregator {
	return &Aggregator{
		filter:  filter,
		records: make(map[model.ApplicationKey]model.Application),
	}
}

// Ingest merges one classified message into the record collection.
// Messages without a status, with an excluded subject keyword, or from
// an excluded company are dropped. An existing record is replaced only
// when the incoming message is strictly newer, so ingesting the same
// message twice is a no-op and the final state is order-independent.
func (a *Aggregator) Ingest(msg Message) {
	if msg.Status == "" || msg.Date.IsZero() {
		return
	}

	company := CompanyFromSender(msg.Sender)
	if a.filter.Irrelevant(msg.Subject, company) {
		return
	}

	title := TitleFromSubject(msg.Subject)
	key := model.ApplicationKey{Company: company, JobTitle: title}
	date := msg.Date.UTC()

	existing, ok := a.records[key]
	if ok && !date.After(existing.LastUpdate) {
		return
	}

	a.records[key] = model.Application{
		Company:     company,
		JobTitle:    title,
		Status:      msg.Status,
		DateApplied: date,
		LastUpdate:  date,
		Subject:     msg.Subject,
	}
}

// Records returns the aggregation map keyed by identity.
func (a *Aggregator) Records() map[model.ApplicationKey]model.Application {
	return a.records
}

// Applications returns the records ordered by last update (newest
// first), then company name, for display and export.
func (a *Aggregator) Applications() []model.Application {
	apps := make([]model.Application, 0, len(a.records))
	for _, app := range a.records {
		apps = append(apps, app)
	}

	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].LastUpdate.Equal(apps[j].LastUpdate) {
			return apps[i].LastUpdate.After(apps[j].LastUpdate)
		}
		return apps[i].Company < apps[j].Company
	})

	return apps
}

// Len returns the number of aggregated records.
func (a *Aggregator) Len() int {
	return len(a.records)
}

// domainPattern captures the domain portion of a sender address.
var domainPattern = regexp.MustCompile(`@([\w.-]+)`)

// titleCaser title-cases derived company names.
var titleCaser = cases.Title(language.English)

// CompanyFromSender derives a company name from the sender's address:
// the text after "@" up to the first ".", title-cased. Senders without
// a domain map to the "Unknown" sentinel.
func CompanyFromSender(sender string) string {
	m := domainPattern.FindStringSubmatch(sender)
	if m == nil {
		return model.UnknownCompany
	}

	domain := m[1]
	if i := strings.Index(domain, "."); i >= 0 {
		domain = domain[:i]
	}
	if domain == "" {
		return model.UnknownCompany
	}

	return titleCaser.String(domain)
}

// TitleFromSubject derives the job title: the subject text after the
// last " at " separator, or the whole subject when absent, trimmed.
func TitleFromSubject(subject string) string {
	title := subject
	if i := strings.LastIndex(subject, " at "); i >= 0 {
		title = subject[i+len(" at "):]
	}
	return strings.TrimSpace(title)
}
