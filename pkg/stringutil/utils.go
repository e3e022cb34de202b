// Package stringutil holds small string helpers shared by the web server and the client.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// MakePathPrefixer returns a func that prefixes paths with basePath.  An empty basePath leaves
// paths unchanged.
func MakePathPrefixer(basePath string) func(string) string {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return func(p string) string { return p }
	}
	prefix := "/" + basePath
	return func(p string) string {
		if p == "" || p == "/" {
			return prefix + "/"
		}
		return prefix + "/" + strings.TrimPrefix(p, "/")
	}
}

// Ellipsis shortens s to at most max runes, marking the cut with "...".
func Ellipsis(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}

// JoinNonEmpty joins the non-empty elements of elems with sep.
func JoinNonEmpty(elems []string, sep string) string {
	kept := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			kept = append(kept, e)
		}
	}
	return strings.Join(kept, sep)
}
