// Package classify assigns a job-application status to an email by
// matching its subject and body against ordered pattern groups.
package classify

import (
	"regexp"

	"github.com/tkiley/jobtrail/internal/model"
)

// Group is one ordered set of patterns tagged with the status it yields.
type Group struct {
	Status   model.Status
	Patterns []*regexp.Regexp
}

// Ruleset holds the full pattern configuration for a Classifier.
// Suppressors are checked before any group; a suppressor match means the
// message superficially resembles interview language but carries no
// actionable signal, so no status is assigned at all.
type Ruleset struct {
	Suppressors []*regexp.Regexp
	Groups      []Group
}

// Classifier applies a Ruleset to message text. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	rules Ruleset
}

// New creates a Classifier with the given ruleset.
func New(rules Ruleset) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the status of the first group with a pattern matching
// either the subject or the body, evaluated in ruleset order. The second
// return value is false when a suppressor matches or no group does.
//
// Group order encodes a confidence ranking: an interview invitation must
// win even when rejection wording co-occurs, and a receipt acknowledgment
// must never shadow a rejection in the same message.
func (c *Classifier) Classify(subject, body string) (model.Status, bool) {
	for _, pat := range c.rules.Suppressors {
		if pat.MatchString(subject) || pat.MatchString(body) {
			return "", false
		}
	}

	for _, group := range c.rules.Groups {
		for _, pat := range group.Patterns {
			if pat.MatchString(subject) || pat.MatchString(body) {
				return group.Status, true
			}
		}
	}

	return "", false
}

// DefaultRules returns the stock ruleset: suppressors, then interview,
// rejection, and acknowledgment signals, in that precedence order.
func DefaultRules() Ruleset {
	return Ruleset{
		Suppressors: compile(
			`what happens next`,
			`you['’]ll hear from us`,
			`shortlisted candidates`,
			`you are not selected`,
			`plan for what might occur`,
		),
		Groups: []Group{
			{
				Status: model.StatusInterviewRequested,
				Patterns: compile(
					`(schedule|availability|book|invite).*interview`,
					`interview.*(scheduled|invite|booking)`,
					`invitation to interview`,
					`recruiter.*reach out`,
				),
			},
			{
				Status: model.StatusRejected,
				Patterns: compile(
					`we will not be moving forward`,
					`we have decided not to proceed`,
					`we regret to inform you`,
					`unfortunately`,
					`we reviewed your application`,
					`not a good fit`,
					`better match`,
					`better fit`,
					`decided to proceed with a shortlist`,
					`decided not to proceed`,
					`regret to inform`,
					`continue our search`,
					`moving forward with other candidates`,
				),
			},
			{
				Status: model.StatusApplicationSent,
				Patterns: compile(
					`thank you for applying`,
					`thank you for your application`,
					`we received your application`,
					`your application was sent to`,
					`you applied to`,
				),
			},
		},
	}
}

// compile builds case-insensitive regexps from the given expressions.
func compile(exprs ...string) []*regexp.Regexp {
	pats := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		pats[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return pats
}
