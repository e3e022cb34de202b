// Package event holds the values passed between okan and its extensions.
package event

import "time"

// OutgoingMessage is the state of a check handed to before-send listeners, after every built-in
// check has run.
type OutgoingMessage struct {
	Sender       string
	SenderDomain string
	Subject      string
	Body         string
	To           []string
	Cc           []string
	Bcc          []string
	Attachments  []string
	Alerts       []string
	CannotSend   bool
}

// Verdict is a before-send listener's response.  Alerts are raised as important alerts; Block
// sets the send-block with Reason.
type Verdict struct {
	Alerts []string
	Block  bool
	Reason string
}

// CheckResult summarizes a completed check.
type CheckResult struct {
	RecordID          string
	Date              time.Time
	Sender            string
	Subject           string
	To                []string
	Cc                []string
	Bcc               []string
	Alerts            []string
	CannotSend        bool
	Reason            string
	NeedsConfirmation bool
}

// RecordMetadata describes an audit record that was stored or deleted.
type RecordMetadata struct {
	ID         string
	Date       time.Time
	Sender     string
	Subject    string
	AlertCount int
	CannotSend bool
}
