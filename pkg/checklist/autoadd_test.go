package checklist_test

import (
	"errors"
	"testing"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoAddByKeyword(t *testing.T) {
	snap := &rules.Snapshot{AutoCcBccKeywords: []rules.AutoCcBccKeyword{
		{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
		{Keyword: "missing", Class: message.Bcc, Target: "never@x.com"},
	}}
	msg := newMessage("the invoice").to("c@client.com")

	cl := generate(msg, snap)

	assert.Equal(t, []string{"boss@x.com"}, msg.added)
	require.Len(t, cl.Alerts(), 1)
	assert.Equal(t, checklist.Alert{
		Message:   "AutoAdd[CC] [boss@x.com] (ByKeyword 「invoice」)",
		IsWhite:   true,
		IsChecked: true,
	}, cl.Alerts()[0])
	assert.Equal(t, []checklist.Address{{Display: "boss@x.com", IsWhite: true, IsChecked: true}}, cl.Cc(),
		"added recipient is resolved and implicitly whitelisted")
}

func TestAutoAddByRecipient(t *testing.T) {
	snap := &rules.Snapshot{AutoCcBccRecipients: []rules.AutoCcBccRecipient{
		{Trigger: "@client.com", Class: message.Bcc, Target: "archive@x.com"},
		{Trigger: "@nobody.com", Class: message.Cc, Target: "never@x.com"},
	}}
	msg := newMessage("").to("c@client.com")

	cl := generate(msg, snap)

	assert.Equal(t, []string{"archive@x.com"}, msg.added)
	assert.Equal(t, []string{"AutoAdd[BCC] [archive@x.com] (ByRecipient 「@client.com」)"},
		messages(cl.Alerts()))
	assert.Equal(t, []string{"archive@x.com"}, displays(cl.Bcc()))
}

func TestAutoAddIgnoresToClass(t *testing.T) {
	snap := &rules.Snapshot{
		AutoCcBccKeywords: []rules.AutoCcBccKeyword{
			{Keyword: "secret", Class: message.To, Target: "boss@x.com"},
		},
		AutoCcBccRecipients: []rules.AutoCcBccRecipient{
			{Trigger: "@client.com", Target: "archive@x.com"},
		},
	}
	msg := newMessage("secret").to("c@client.com")

	cl := generate(msg, snap)

	assert.Empty(t, msg.added)
	assert.Empty(t, cl.Alerts())
	assert.Equal(t, []string{"c@client.com"}, displays(cl.To()))
}

func TestAutoAddGuardAcrossSources(t *testing.T) {
	snap := &rules.Snapshot{
		AutoCcBccKeywords: []rules.AutoCcBccKeyword{
			{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
			{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
		},
		AutoCcBccRecipients: []rules.AutoCcBccRecipient{
			{Trigger: "client", Class: message.Cc, Target: "boss@x.com"},
		},
	}
	msg := newMessage("invoice").to("c@client.com")

	cl := generate(msg, snap)

	assert.Equal(t, []string{"boss@x.com"}, msg.added, "added exactly once")
	assert.Len(t, cl.Alerts(), 1)
	assert.Len(t, cl.Cc(), 1)
}

func TestAutoAddGuardIsPerClass(t *testing.T) {
	snap := &rules.Snapshot{AutoCcBccKeywords: []rules.AutoCcBccKeyword{
		{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
		{Keyword: "invoice", Class: message.Bcc, Target: "boss@x.com"},
	}}
	msg := newMessage("invoice")
	generate(msg, snap)
	assert.Equal(t, []string{"boss@x.com", "boss@x.com"}, msg.added)
}

func TestAutoAddSkipsExistingRecipients(t *testing.T) {
	snap := &rules.Snapshot{
		AutoCcBccKeywords: []rules.AutoCcBccKeyword{
			{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
			{Keyword: "invoice", Class: message.Bcc, Target: "x.com"},
		},
	}
	msg := newMessage("invoice").to("big-boss@x.com.au")

	cl := generate(msg, snap)

	assert.Empty(t, msg.added, "existing addresses containing the target suppress the rule")
	assert.Empty(t, cl.Alerts())
	assert.Equal(t, 1, msg.resolveCalls)
}

func TestAutoAddTriggersOnlyOnOriginalRecipients(t *testing.T) {
	snap := &rules.Snapshot{
		AutoCcBccKeywords: []rules.AutoCcBccKeyword{
			{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
		},
		AutoCcBccRecipients: []rules.AutoCcBccRecipient{
			{Trigger: "boss@", Class: message.Bcc, Target: "audit@x.com"},
		},
	}
	msg := newMessage("invoice").to("c@client.com")
	generate(msg, snap)
	assert.Equal(t, []string{"boss@x.com"}, msg.added, "added recipients do not trigger further rules")
}

func TestAutoAddRecipientError(t *testing.T) {
	snap := &rules.Snapshot{AutoCcBccKeywords: []rules.AutoCcBccKeyword{
		{Keyword: "invoice", Class: message.Cc, Target: "boss@x.com"},
	}}
	msg := newMessage("invoice").to("c@client.com")
	msg.addErr = errors.New("read-only")
	msg.resolveErr = errors.New("offline")

	cl := generate(msg, snap)
	assert.Empty(t, cl.Alerts())
	assert.Empty(t, cl.Cc())
	assert.Equal(t, 1, msg.resolveCalls, "resolution still requested")
	assert.Len(t, cl.To(), 1)
}

func TestAutoAddWithDraft(t *testing.T) {
	book := &message.Book{Users: []message.Entry{
		{Name: "Boss", Address: "boss@x.com", Aliases: []string{"boss"}},
	}}
	d := &message.Draft{AccountAddress: "a@x.com", PlainBody: "invoice attached", Directory: book}
	require.NoError(t, d.AddRecipient("c@client.com", message.To))
	require.NoError(t, d.ResolveAll())
	snap := &rules.Snapshot{AutoCcBccKeywords: []rules.AutoCcBccKeyword{
		{Keyword: "invoice", Class: message.Cc, Target: "boss"},
	}}

	cl := generate(d, snap)

	require.Len(t, d.Recipients(), 2)
	assert.Equal(t, []checklist.Address{
		{Display: "Boss (boss@x.com)", IsWhite: true, IsChecked: true},
	}, cl.Cc(), "second resolution picks up the directory entry")
}
