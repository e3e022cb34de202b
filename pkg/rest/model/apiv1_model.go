// Package model holds the JSON documents exchanged by the REST API and its client.
package model

import "time"

// JSONRecordHeaderV1 summarizes one audit record.
type JSONRecordHeaderV1 struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	PosixMillis       int64     `json:"posix-millis"`
	Sender            string    `json:"sender"`
	Subject           string    `json:"subject"`
	ToCount           int       `json:"to-count"`
	CcCount           int       `json:"cc-count"`
	BccCount          int       `json:"bcc-count"`
	AlertCount        int       `json:"alert-count"`
	CannotSend        bool      `json:"cannot-send"`
	Reason            string    `json:"reason,omitempty"`
	NeedsConfirmation bool      `json:"needs-confirmation"`
}

// JSONRecordV1 is an audit record including its check list.
type JSONRecordV1 struct {
	JSONRecordHeaderV1
	CheckList *JSONCheckListV1 `json:"check-list"`
}

// JSONCheckListV1 is a check list ready for review.
type JSONCheckListV1 struct {
	ID                string              `json:"id,omitempty"`
	Date              time.Time           `json:"date"`
	Sender            string              `json:"sender"`
	SenderDomain      string              `json:"sender-domain"`
	Subject           string              `json:"subject"`
	MailType          string              `json:"mail-type"`
	Body              *JSONBodyV1         `json:"body"`
	Alerts            []*JSONAlertV1      `json:"alerts"`
	To                []*JSONAddressV1    `json:"to"`
	Cc                []*JSONAddressV1    `json:"cc"`
	Bcc               []*JSONAddressV1    `json:"bcc"`
	Attachments       []*JSONAttachmentV1 `json:"attachments"`
	CannotSend        bool                `json:"cannot-send"`
	CannotSendReason  string              `json:"cannot-send-reason,omitempty"`
	NeedsConfirmation bool                `json:"needs-confirmation"`
}

// JSONBodyV1 contains the text and HTML versions of the message body.  HTML is sanitized, or
// rendered from the text when the message has no HTML part.
type JSONBodyV1 struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// JSONAlertV1 is one check list alert.
type JSONAlertV1 struct {
	Message   string `json:"message"`
	Important bool   `json:"important"`
	White     bool   `json:"white"`
	Checked   bool   `json:"checked"`
}

// JSONAddressV1 is one classified recipient.
type JSONAddressV1 struct {
	Display  string `json:"display"`
	External bool   `json:"external"`
	White    bool   `json:"white"`
	Checked  bool   `json:"checked"`
}

// JSONAttachmentV1 describes one attachment.
type JSONAttachmentV1 struct {
	FileName  string `json:"filename"`
	Size      string `json:"size"`
	Type      string `json:"type"`
	TooBig    bool   `json:"too-big"`
	Dangerous bool   `json:"dangerous"`
	Encrypted bool   `json:"encrypted"`
}

// JSONCheckEventV1 summarizes a completed check for monitor clients.
type JSONCheckEventV1 struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	PosixMillis       int64     `json:"posix-millis"`
	Sender            string    `json:"sender"`
	Subject           string    `json:"subject"`
	To                []string  `json:"to"`
	Cc                []string  `json:"cc"`
	Bcc               []string  `json:"bcc"`
	Alerts            []string  `json:"alerts"`
	CannotSend        bool      `json:"cannot-send"`
	Reason            string    `json:"reason,omitempty"`
	NeedsConfirmation bool      `json:"needs-confirmation"`
}

// JSONMonitorEventV1 is sent to check monitor clients.
type JSONMonitorEventV1 struct {
	// Event variant: `check-completed`, `record-deleted`.
	Variant string            `json:"variant"`
	Check   *JSONCheckEventV1 `json:"check,omitempty"`
	ID      string            `json:"id,omitempty"`
}
