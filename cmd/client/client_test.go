package main

import (
	"strings"
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/rest/client"
	"github.com/okanmail/okan/pkg/rest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCheckList(t *testing.T) {
	cl := &model.JSONCheckListV1{
		Sender:           "alice@example.com",
		Subject:          "Hello",
		MailType:         "Text",
		CannotSend:       true,
		CannotSendReason: "Mentions a secret project",
		Alerts: []*model.JSONAlertV1{
			{Message: "Mentions a secret project", Important: true},
			{Message: "Check the body", Checked: true},
		},
		To: []*model.JSONAddressV1{
			{Display: "bob@client.com", External: true},
		},
		Cc: []*model.JSONAddressV1{
			{Display: "carol@example.com", Checked: true},
		},
		Attachments: []*model.JSONAttachmentV1{
			{FileName: "a.pdf", Size: "1KB"},
			{FileName: "setup.exe", Size: "0KB", Dangerous: true},
		},
		NeedsConfirmation: true,
	}
	b := &strings.Builder{}
	require.NoError(t, writeCheckList(b, cl))

	want := `Sender:  alice@example.com
Subject: Hello
Type:    Text

CANNOT SEND: Mentions a secret project

Alerts:
  [ ] ! Mentions a secret project
  [x]   Check the body

To:
  [ ] bob@client.com (external)

Cc:
  [x] carol@example.com (internal)

Attachments:
  [ ] a.pdf 1KB
  [ ] setup.exe 0KB dangerous

Review required before sending.
`
	assert.Equal(t, want, b.String())
}

func TestAuditMatch(t *testing.T) {
	header := func(subject string, blocked bool, age time.Duration) *client.RecordHeader {
		return &client.RecordHeader{JSONRecordHeaderV1: &model.JSONRecordHeaderV1{
			Sender:     "alice@example.com",
			Subject:    subject,
			CannotSend: blocked,
			Date:       time.Now().Add(-age),
		}}
	}

	a := &auditCmd{}
	assert.True(t, a.match(header("Hello", false, time.Hour)))

	a.blocked = true
	assert.False(t, a.match(header("Hello", false, 0)))
	assert.True(t, a.match(header("Hello", true, 0)))

	require.NoError(t, a.subject.Set("^Invoice"))
	assert.False(t, a.match(header("Hello", true, 0)))
	assert.True(t, a.match(header("Invoice 12", true, 0)))

	require.NoError(t, a.sender.Set("@client\\.com$"))
	assert.False(t, a.match(header("Invoice 12", true, 0)))
	require.NoError(t, a.sender.Set("@example\\.com$"))

	a.maxAge = time.Minute
	assert.False(t, a.match(header("Invoice 12", true, time.Hour)))
	assert.True(t, a.match(header("Invoice 12", true, 0)))
}
