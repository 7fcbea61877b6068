package mail

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// TextExtractor produces the visible text of an HTML document. The
// implementation is chosen once when the Normalizer is built, never
// probed per call.
type TextExtractor interface {
	Text(htmlSrc string) string
}

// TokenizerExtractor walks the HTML token stream and collects text
// nodes, skipping script and style content. This is the default
// extractor.
type TokenizerExtractor struct{}

// Text returns the visible text of the given HTML.
func (TokenizerExtractor) Text(htmlSrc string) string {
	if htmlSrc == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(htmlSrc))
	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// Includes io.EOF; whatever was collected is the result.
			return tidyText(b.String())

		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "br", "p", "div", "li", "tr":
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div", "li", "tr":
				b.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// RegexExtractor strips markup with a tag regexp and decodes common
// entities. It is the fallback when structured parsing is not wanted.
type RegexExtractor struct{}

// Text returns a basic plain-text rendering of the given HTML.
func (RegexExtractor) Text(htmlSrc string) string {
	if htmlSrc == "" {
		return ""
	}

	result := htmlSrc
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	return tidyText(result)
}

// tidyText collapses runs of blank lines and trims surrounding space.
func tidyText(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
