package sanitize

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// From http://daringfireball.net/2010/07/improved_regex_for_matching_urls
var urlRE = regexp.MustCompile("(?i)\\b((?:[a-z][\\w-]+:(?:/{1,3}|[a-z0-9%])|www\\d{0,3}[.]|[a-z0-9.\\-]+[.][a-z]{2,4}/)(?:[^\\s()<>]+|\\(([^\\s()<>]+|(\\([^\\s()<>]+\\)))*\\))+(?:\\(([^\\s()<>]+|(\\([^\\s()<>]+\\)))*\\)|[^\\s`!()\\[\\]{};:'\".,<>?«»“”‘’]))")

var lineBreaks = strings.NewReplacer("\r\n", "<br/>\n", "\r", "<br/>\n", "\n", "<br/>\n")

// Body returns the HTML a reviewer is shown: the sanitized HTML body, or the text body rendered
// as HTML when there is no HTML body.
func Body(text, htmlBody string) (string, error) {
	if htmlBody != "" {
		return HTML(htmlBody)
	}
	return TextToHTML(text), nil
}

// TextToHTML escapes plain text and links its URLs.
func TextToHTML(text string) string {
	text = html.EscapeString(text)
	text = urlRE.ReplaceAllStringFunc(text, wrapURL)
	return lineBreaks.Replace(text)
}

// wrapURL wraps a <a href> tag around the provided URL.
func wrapURL(url string) string {
	unescaped := strings.ReplaceAll(url, "&amp;", "&")
	return fmt.Sprintf("<a href=\"%s\" target=\"_blank\" rel=\"noopener\">%s</a>", unescaped, url)
}
