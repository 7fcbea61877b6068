package classify_test

import (
	"regexp"
	"testing"

	"github.com/tkiley/jobtrail/internal/classify"
	"github.com/tkiley/jobtrail/internal/model"
)

func defaultClassifier() *classify.Classifier {
	return classify.New(classify.DefaultRules())
}

// ── Group precedence ───────────────────────────────────────────────────────

func TestClassify_SuppressorBlocksEverything(t *testing.T) {
	c := defaultClassifier()

	// Matches an interview pattern, a rejection pattern, and an
	// acknowledgment pattern at once; the suppressor must still win.
	body := "Please schedule your interview. Unfortunately we are busy. " +
		"Thank you for applying. Here is what happens next."

	if status, ok := c.Classify("Update on your application", body); ok {
		t.Errorf("Classify with suppressor = (%q, true), want no label", status)
	}
}

func TestClassify_SuppressorMatchesSubjectToo(t *testing.T) {
	c := defaultClassifier()

	_, ok := c.Classify("What happens next", "Please schedule your interview")
	if ok {
		t.Error("suppressor in subject should block classification")
	}
}

func TestClassify_InterviewBeatsRejection(t *testing.T) {
	c := defaultClassifier()

	body := "Unfortunately the Berlin role closed, but we would like to " +
		"invite you to an interview for the Munich opening."

	status, ok := c.Classify("Next steps", body)
	if !ok {
		t.Fatal("expected a label, got none")
	}
	if status != model.StatusInterviewRequested {
		t.Errorf("Classify = %q, want %q", status, model.StatusInterviewRequested)
	}
}

func TestClassify_RejectionBeatsAcknowledgment(t *testing.T) {
	c := defaultClassifier()

	body := "Thank you for applying. We regret to inform you that we will " +
		"not be moving forward."

	status, ok := c.Classify("Your application", body)
	if !ok {
		t.Fatal("expected a label, got none")
	}
	if status != model.StatusRejected {
		t.Errorf("Classify = %q, want %q", status, model.StatusRejected)
	}
}

// ── Individual groups ──────────────────────────────────────────────────────

func TestClassify_StatusPerGroup(t *testing.T) {
	c := defaultClassifier()

	cases := []struct {
		name    string
		subject string
		body    string
		want    model.Status
	}{
		{
			name:    "interview via subject",
			subject: "Invitation to interview",
			want:    model.StatusInterviewRequested,
		},
		{
			name: "interview action verb near interview",
			body: "Please share your availability for a phone interview",
			want: model.StatusInterviewRequested,
		},
		{
			name: "recruiter reach out",
			body: "A recruiter will reach out shortly",
			want: model.StatusInterviewRequested,
		},
		{
			name: "rejection shortlist",
			body: "We have decided to proceed with a shortlist of candidates",
			want: model.StatusRejected,
		},
		{
			name:    "rejection unfortunately",
			subject: "Unfortunately...",
			want:    model.StatusRejected,
		},
		{
			name: "acknowledgment received",
			body: "We received your application.",
			want: model.StatusApplicationSent,
		},
		{
			name:    "acknowledgment applied to",
			subject: "You applied to Initech",
			want:    model.StatusApplicationSent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, ok := c.Classify(tc.subject, tc.body)
			if !ok {
				t.Fatalf("Classify(%q, %q) returned no label", tc.subject, tc.body)
			}
			if status != tc.want {
				t.Errorf("Classify(%q, %q) = %q, want %q",
					tc.subject, tc.body, status, tc.want)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := defaultClassifier()

	status, ok := c.Classify("", "THANK YOU FOR APPLYING")
	if !ok || status != model.StatusApplicationSent {
		t.Errorf("Classify uppercase = (%q, %v), want (%q, true)",
			status, ok, model.StatusApplicationSent)
	}
}

func TestClassify_NoSignal(t *testing.T) {
	c := defaultClassifier()

	if status, ok := c.Classify("Lunch on Friday?", "See you at noon."); ok {
		t.Errorf("Classify irrelevant mail = (%q, true), want no label", status)
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	c := defaultClassifier()

	if _, ok := c.Classify("", ""); ok {
		t.Error("Classify(\"\", \"\") should return no label")
	}
}

// ── Injected rulesets ──────────────────────────────────────────────────────

func TestClassify_CustomRuleset(t *testing.T) {
	rules := classify.Ruleset{
		Suppressors: []*regexp.Regexp{regexp.MustCompile(`(?i)ignore me`)},
		Groups: []classify.Group{
			{
				Status:   model.StatusRejected,
				Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)declined`)},
			},
		},
	}
	c := classify.New(rules)

	if status, ok := c.Classify("Declined", ""); !ok || status != model.StatusRejected {
		t.Errorf("custom rule = (%q, %v), want (%q, true)",
			status, ok, model.StatusRejected)
	}
	if _, ok := c.Classify("declined, but ignore me", ""); ok {
		t.Error("custom suppressor should block the rejection rule")
	}
}
