// Package extract turns fetched portal pages and filing exports into
// partial company records. Everything in here is heuristic: missing
// fields are normal and never an error.
package extract

import (
	"regexp"
	"strings"
)

var (
	titleRe = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)

	blockTags = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
		regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
	}
)

// ExtractTitle pulls the <title> from raw HTML.
func ExtractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

// StripHTML removes script/style/nav/footer blocks, strips tags, decodes
// common entities, and collapses whitespace. Table cells become
// space-separated runs on their row's line, which is what the label
// matchers in this package scan over.
func StripHTML(html string) string {
	for _, re := range blockTags {
		html = re.ReplaceAllString(html, "")
	}

	// Row and break tags become newlines so one table row stays one line.
	html = regexp.MustCompile(`(?i)<(/tr|br\s*/?|/p|/h[1-6])>`).ReplaceAllString(html, "\n")
	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	html = spaceRe.ReplaceAllString(html, " ")
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
