package mail_test

import (
	"strings"
	"testing"

	"github.com/tkiley/jobtrail/internal/mail"
)

// rfc822 builds a message from header lines and a body, with CRLF line
// endings as fetched over IMAP.
func rfc822(headers []string, body string) []byte {
	crlfBody := strings.ReplaceAll(body, "\n", "\r\n")
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + crlfBody)
}

func TestNormalize_PlainTextRoundTrip(t *testing.T) {
	n := mail.DefaultNormalizer()

	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Thank you for applying at Acme",
		"Content-Type: text/plain; charset=utf-8",
	}, "We received your application.")

	got := n.Normalize(mail.RawMessage{
		Subject: "Thank you for applying at Acme",
		From:    "jobs@acme.com",
		Raw:     raw,
	})

	if got.Body != "We received your application." {
		t.Errorf("Body = %q, want the payload unchanged", got.Body)
	}
	if got.Subject != "Thank you for applying at Acme" {
		t.Errorf("Subject = %q", got.Subject)
	}
}

func TestNormalize_MultilineBodyExcludesHeaders(t *testing.T) {
	n := mail.DefaultNormalizer()

	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Update on your application",
		"Content-Type: text/plain; charset=utf-8",
	}, "We regret to inform you.\nPlease keep an eye on our careers page.")

	got := n.Normalize(mail.RawMessage{Raw: raw})

	if !strings.Contains(got.Body, "We regret to inform you.") ||
		!strings.Contains(got.Body, "careers page.") {
		t.Errorf("Body = %q, want both body lines", got.Body)
	}
	if strings.Contains(got.Body, "From:") || strings.Contains(got.Body, "Subject:") {
		t.Errorf("Body = %q, header lines leaked into the body", got.Body)
	}
}

func TestNormalize_HTMLOnlyBody(t *testing.T) {
	n := mail.DefaultNormalizer()

	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Your application",
		"Content-Type: text/html; charset=utf-8",
	}, "<p>Thank you for applying</p>")

	got := n.Normalize(mail.RawMessage{Raw: raw})

	if !strings.Contains(got.Body, "Thank you for applying") {
		t.Errorf("Body = %q, want the visible text", got.Body)
	}
	if strings.ContainsAny(got.Body, "<>") {
		t.Errorf("Body = %q, want no tag markup", got.Body)
	}
}

func TestNormalize_MultipartPrefersPlainText(t *testing.T) {
	n := mail.DefaultNormalizer()

	body := `--frontier
Content-Type: text/html; charset=utf-8

<p>html version</p>
--frontier
Content-Type: text/plain; charset=utf-8

plain version
--frontier--
`
	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Update",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary=frontier`,
	}, body)

	got := n.Normalize(mail.RawMessage{Raw: raw})

	if got.Body != "plain version" {
		t.Errorf("Body = %q, want the text/plain part", got.Body)
	}
}

func TestNormalize_MultipartFallsBackToHTML(t *testing.T) {
	n := mail.DefaultNormalizer()

	body := `--frontier
Content-Type: text/html; charset=utf-8

<div>only html here</div>
--frontier--
`
	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Update",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary=frontier`,
	}, body)

	got := n.Normalize(mail.RawMessage{Raw: raw})

	if !strings.Contains(got.Body, "only html here") {
		t.Errorf("Body = %q, want stripped HTML text", got.Body)
	}
}

func TestNormalize_NoTextPartYieldsEmptyBody(t *testing.T) {
	n := mail.DefaultNormalizer()

	body := `--frontier
Content-Type: application/octet-stream

AAAA
--frontier--
`
	raw := rfc822([]string{
		"From: jobs@acme.com",
		"Subject: Attachment only",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary=frontier`,
	}, body)

	got := n.Normalize(mail.RawMessage{Raw: raw})

	if got.Body != "" {
		t.Errorf("Body = %q, want empty", got.Body)
	}
}

func TestNormalize_EmptyRawYieldsEmptyBody(t *testing.T) {
	n := mail.DefaultNormalizer()

	got := n.Normalize(mail.RawMessage{Subject: "just a subject"})
	if got.Body != "" {
		t.Errorf("Body = %q, want empty", got.Body)
	}
	if got.Subject != "just a subject" {
		t.Errorf("Subject = %q", got.Subject)
	}
}

func TestDecodeHeader_EncodedWord(t *testing.T) {
	got := mail.DecodeHeader("=?utf-8?q?D=C3=A9veloppeur_Go?=")
	if got != "Développeur Go" {
		t.Errorf("DecodeHeader = %q, want %q", got, "Développeur Go")
	}
}

func TestDecodeHeader_PlainValueUnchanged(t *testing.T) {
	got := mail.DecodeHeader("jobs@acme.com")
	if got != "jobs@acme.com" {
		t.Errorf("DecodeHeader = %q", got)
	}
}
