// Package l10n provides the localized labels and alert texts used in check lists.
package l10n

import (
	"slices"

	"golang.org/x/text/language"
)

// ID names a localized text.
type ID string

// Text IDs.
const (
	FailedToGetInformation ID = "FailedToGetInformation"
	ForgottenAttachment    ID = "ForgottenAttachment"
	Unknown                ID = "Unknown"
	FormatText             ID = "FormatText"
	FormatHTML             ID = "FormatHTML"
	FormatRichText         ID = "FormatRichText"
	AutoAdd                ID = "AutoAdd"
	ByKeyword              ID = "ByKeyword"
	ByRecipient            ID = "ByRecipient"
	BigAttachment          ID = "BigAttachment"
	ExeAttachment          ID = "ExeAttachment"
	MaybeIrrelevant        ID = "MaybeIrrelevant"
	AlertTo                ID = "AlertTo"
	AlertCc                ID = "AlertCc"
	AlertBcc               ID = "AlertBcc"
	ForbiddenAddress       ID = "ForbiddenAddress"
	ExtensionAlert         ID = "ExtensionAlert"
)

// Catalog is the set of texts for one language.  A Catalog is never modified after creation.
type Catalog struct {
	tag      language.Tag
	messages map[ID]string
	words    []string
}

// Tag returns the language of the catalog.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// Message returns the text for id, or id itself when the catalog has no such text.
func (c *Catalog) Message(id ID) string {
	if s, ok := c.messages[id]; ok {
		return s
	}
	return string(id)
}

// AttachmentWords returns the body words that suggest a file was meant to be attached.
func (c *Catalog) AttachmentWords() []string {
	return slices.Clone(c.words)
}

// WithAttachmentWords returns a copy of the catalog using words as its attachment words.  An empty
// words leaves the catalog unchanged.
func (c *Catalog) WithAttachmentWords(words []string) *Catalog {
	if len(words) == 0 {
		return c
	}
	return &Catalog{tag: c.tag, messages: c.messages, words: slices.Clone(words)}
}

var supported = []language.Tag{language.Japanese, language.AmericanEnglish}

var matcher = language.NewMatcher(supported)

// Languages lists the supported language tags, default first.
func Languages() []language.Tag {
	return slices.Clone(supported)
}

// For returns the catalog best matching lang, a BCP 47 tag or Accept-Language value.  Japanese is
// returned when nothing matches.
func For(lang string) *Catalog {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return Japanese
	}
	_, i, conf := matcher.Match(tags...)
	if conf == language.No {
		return Japanese
	}
	if supported[i] == language.AmericanEnglish {
		return English
	}
	return Japanese
}
