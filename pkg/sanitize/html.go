// Package sanitize prepares message bodies for display to reviewers.  Nothing in a sanitized body
// loads from the network when it is displayed.
package sanitize

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	cssSafe = regexp.MustCompile(".*")
	policy  = bluemonday.UGCPolicy().
		AllowElements("center").
		AllowAttrs("style").Matching(cssSafe).Globally().
		RequireNoReferrerOnLinks(true)
)

// HTML sanitizes the provided html for review.  Inline CSS is kept where it is allowed, and remote
// images are replaced by a text marker.
func HTML(input string) (string, error) {
	b := &strings.Builder{}
	if err := reviewFilter(b, strings.NewReader(input)); err != nil {
		return "", err
	}
	return policy.Sanitize(b.String()), nil
}

// reviewFilter rewrites start tags ahead of the bluemonday policy: style attributes are reduced to
// the allowed declarations, and images with a remote source become text.
func reviewFilter(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	z := html.NewTokenizer(r)
	for {
		var err error
		switch tt := z.Next(); tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return err
			}
			return bw.Flush()
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.DataAtom == atom.Img && remoteImage(t) {
				_, err = bw.WriteString(html.EscapeString(imageMarker(t)))
			} else {
				_, err = bw.WriteString(filterStyle(t).String())
			}
		default:
			_, err = bw.Write(z.Raw())
		}
		if err != nil {
			return err
		}
	}
}

// filterStyle sanitizes the style attribute of t, removing it when nothing is left.
func filterStyle(t html.Token) html.Token {
	attrs := make([]html.Attribute, 0, len(t.Attr))
	for _, a := range t.Attr {
		if a.Key == "style" {
			a.Val = sanitizeStyle(a.Val)
			if a.Val == "" {
				continue
			}
		}
		attrs = append(attrs, a)
	}
	t.Attr = attrs
	return t
}

func remoteImage(t html.Token) bool {
	for _, a := range t.Attr {
		if a.Key == "src" {
			src := strings.ToLower(strings.TrimSpace(a.Val))
			return strings.HasPrefix(src, "http:") || strings.HasPrefix(src, "https:") ||
				strings.HasPrefix(src, "//")
		}
	}
	return false
}

func imageMarker(t html.Token) string {
	for _, a := range t.Attr {
		if a.Key == "alt" && strings.TrimSpace(a.Val) != "" {
			return "[remote image: " + strings.TrimSpace(a.Val) + "]"
		}
	}
	return "[remote image]"
}
