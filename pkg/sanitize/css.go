package sanitize

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// allowedProperties are the inline CSS properties kept in a reviewed body.  Properties able to hide
// or clip text, such as display, height and overflow, are not listed.
var allowedProperties = map[string]bool{
	"align":            true,
	"background":       true,
	"background-color": true,
	"border":           true,
	"border-bottom":    true,
	"border-collapse":  true,
	"border-left":      true,
	"border-radius":    true,
	"border-right":     true,
	"border-top":       true,
	"color":            true,
	"font-family":      true,
	"font-size":        true,
	"font-style":       true,
	"font-weight":      true,
	"line-height":      true,
	"margin":           true,
	"margin-bottom":    true,
	"margin-left":      true,
	"margin-right":     true,
	"margin-top":       true,
	"max-width":        true,
	"padding":          true,
	"padding-bottom":   true,
	"padding-left":     true,
	"padding-right":    true,
	"padding-top":      true,
	"text-align":       true,
	"text-decoration":  true,
	"vertical-align":   true,
	"white-space":      true,
	"width":            true,
}

// styleWriter collects the kept declarations of an inline style.
type styleWriter struct {
	out  strings.Builder
	decl strings.Builder // Declaration being scanned.
	keep bool
}

// commit appends the declaration being scanned when it is kept.
func (w *styleWriter) commit() {
	if w.keep {
		w.out.WriteString(w.decl.String())
	}
	w.decl.Reset()
	w.keep = false
}

// drop discards the declaration being scanned.
func (w *styleWriter) drop() {
	w.decl.Reset()
	w.keep = false
}

// Handler Token, return next state.
type stateHandler func(w *styleWriter, t *scanner.Token) stateHandler

// sanitizeStyle reduces an inline style to its allowed declarations.  A declaration that loads a
// resource through url() is dropped, and a style the scanner rejects is dropped entirely.
func sanitizeStyle(input string) string {
	w := &styleWriter{}
	scan := scanner.New(input)
	state := stateStart
	for {
		t := scan.Next()
		switch t.Type {
		case scanner.TokenEOF:
			w.commit()
			return w.out.String()
		case scanner.TokenError:
			return ""
		}
		state = state(w, t)
	}
}

func stateStart(w *styleWriter, t *scanner.Token) stateHandler {
	switch t.Type {
	case scanner.TokenIdent:
		if !allowedProperties[strings.ToLower(t.Value)] {
			return stateEat
		}
		w.keep = true
		w.decl.WriteString(t.Value)
		return stateValue
	case scanner.TokenS:
		return stateStart
	}
	return stateEat
}

func stateEat(w *styleWriter, t *scanner.Token) stateHandler {
	if t.Type == scanner.TokenChar && t.Value == ";" {
		// Done eating.
		return stateStart
	}
	return stateEat
}

func stateValue(w *styleWriter, t *scanner.Token) stateHandler {
	switch {
	case t.Type == scanner.TokenURI,
		t.Type == scanner.TokenFunction && strings.EqualFold(t.Value, "url("):
		w.drop()
		return stateEat
	case t.Type == scanner.TokenChar && t.Value == ";":
		// End of declaration.
		w.decl.WriteString(t.Value)
		w.commit()
		return stateStart
	}
	w.decl.WriteString(t.Value)
	return stateValue
}
