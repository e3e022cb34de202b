package checklist_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(msg message.Outgoing, snap *rules.Snapshot) *checklist.CheckList {
	return checklist.Generate(msg, snap, stubText{})
}

func messages(alerts []checklist.Alert) []string {
	ms := make([]string, len(alerts))
	for i, a := range alerts {
		ms[i] = a.Message
	}
	return ms
}

func displays(addrs []checklist.Address) []string {
	ds := make([]string, len(addrs))
	for i, a := range addrs {
		ds[i] = a.Display
	}
	return ds
}

func TestEmptyRulesMirrorRecipients(t *testing.T) {
	msg := newMessage("hello").
		to("b@x.com", "c@y.com").
		cc("d@x.com").
		bcc("e@z.com")

	cl := generate(msg, &rules.Snapshot{})

	assert.Empty(t, cl.Alerts())
	assert.False(t, cl.CannotSend())
	assert.Empty(t, cl.CannotSendReason())
	assert.Equal(t, []string{"b@x.com", "c@y.com"}, displays(cl.To()))
	assert.Equal(t, []string{"d@x.com"}, displays(cl.Cc()))
	assert.Equal(t, []string{"e@z.com"}, displays(cl.Bcc()))
	assert.Empty(t, msg.added)
	assert.Equal(t, 1, msg.resolveCalls, "recipients are always finalized")
}

func TestNilSnapshotAndText(t *testing.T) {
	cl := checklist.Generate(newMessage("添付").to("b@x.com"), nil, nil)
	require.Len(t, cl.Alerts(), 1)
	assert.Equal(t, l10n.Japanese.Message(l10n.ForgottenAttachment), cl.Alerts()[0].Message)
	assert.Equal(t, l10n.Japanese.Message(l10n.FormatText), cl.MailType())
}

func TestGeneralInfo(t *testing.T) {
	msg := newMessage("body")
	msg.subject = "Quote"
	msg.html = "<p>body</p>"
	msg.format = message.FormatHTML

	cl := generate(msg, nil)
	assert.Equal(t, "a@x.com", cl.Sender())
	assert.Equal(t, "@x.com", cl.SenderDomain())
	assert.Equal(t, "Quote", cl.Subject())
	assert.Equal(t, "body", cl.Body())
	assert.Equal(t, "<p>body</p>", cl.HTMLBody())
	assert.Equal(t, "FormatHTML", cl.MailType())
}

func TestMailTypeLabels(t *testing.T) {
	testCases := map[message.BodyFormat]string{
		message.FormatUnspecified: "Unknown",
		message.FormatPlain:       "FormatText",
		message.FormatHTML:        "FormatHTML",
		message.FormatRichText:    "FormatRichText",
		message.BodyFormat(42):    "Unknown",
	}
	for format, want := range testCases {
		msg := newMessage("")
		msg.format = format
		assert.Equal(t, want, generate(msg, nil).MailType())
	}
}

func TestSenderFallback(t *testing.T) {
	testCases := []struct {
		name        string
		sender      string
		senderErr   error
		fallback    string
		fallbackErr error
		wantSender  string
		wantDomain  string
	}{
		{
			name:       "primary",
			sender:     "me@x.com",
			fallback:   "other@y.com",
			wantSender: "me@x.com",
			wantDomain: "@x.com",
		},
		{
			name:       "primary error",
			senderErr:  message.ErrNoSender,
			fallback:   "other@y.com",
			wantSender: "other@y.com",
			wantDomain: "@y.com",
		},
		{
			name:       "primary empty",
			fallback:   "other@y.com",
			wantSender: "other@y.com",
			wantDomain: "@y.com",
		},
		{
			name:       "fallback lacks at sign",
			senderErr:  message.ErrNoSender,
			fallback:   "/o=x/cn=me",
			wantSender: "FailedToGetInformation",
			wantDomain: "--------------------",
		},
		{
			name:        "both fail",
			senderErr:   message.ErrNoSender,
			fallbackErr: message.ErrNoSender,
			wantSender:  "FailedToGetInformation",
			wantDomain:  "--------------------",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := newMessage("").to("b@x.com")
			msg.sender, msg.senderErr = tc.sender, tc.senderErr
			msg.fallback, msg.fallbackErr = tc.fallback, tc.fallbackErr

			cl := generate(msg, nil)
			assert.Equal(t, tc.wantSender, cl.Sender())
			assert.Equal(t, tc.wantDomain, cl.SenderDomain())
		})
	}
}

func TestUnknownSenderTreatsEveryoneAsExternal(t *testing.T) {
	msg := newMessage("").to("b@x.com")
	msg.senderErr = message.ErrNoSender
	cl := generate(msg, nil)
	require.Len(t, cl.To(), 1)
	assert.True(t, cl.To()[0].IsExternal)
}

func TestForgottenAttachment(t *testing.T) {
	cl := generate(newMessage("please see 添付").to("b@x.com"), nil)
	require.Len(t, cl.Alerts(), 1)
	assert.Equal(t, checklist.Alert{Message: "ForgottenAttachment", IsImportant: true}, cl.Alerts()[0])

	cl = generate(newMessage("please see 添付").attach("a.pdf", 10), nil)
	assert.Empty(t, cl.Alerts(), "attachment present")

	msg := newMessage("I attach the file, 添付")
	cl = checklist.Generate(msg, nil, stubText{words: []string{"添付", "attach"}})
	assert.Len(t, cl.Alerts(), 1, "one alert however many words match")
}

func TestKeywordBlocks(t *testing.T) {
	snap := &rules.Snapshot{AlertKeywords: []rules.AlertKeyword{
		{Keyword: "機密", Message: "confidential!", CannotSend: true},
	}}
	cl := generate(newMessage("これは機密です").to("b@x.com"), snap)

	require.Len(t, cl.Alerts(), 1)
	assert.Equal(t, checklist.Alert{Message: "confidential!", IsImportant: true}, cl.Alerts()[0])
	assert.True(t, cl.CannotSend())
	assert.Equal(t, "confidential!", cl.CannotSendReason())
}

func TestKeywordLastBlockWins(t *testing.T) {
	snap := &rules.Snapshot{AlertKeywords: []rules.AlertKeyword{
		{Keyword: "a", Message: "first", CannotSend: true},
		{Keyword: "b", Message: "warn only"},
		{Keyword: "c", Message: "second", CannotSend: true},
		{Keyword: "zzz", Message: "no match", CannotSend: true},
	}}
	cl := generate(newMessage("a b c"), snap)
	assert.Equal(t, []string{"first", "warn only", "second"}, messages(cl.Alerts()))
	assert.True(t, cl.CannotSend())
	assert.Equal(t, "second", cl.CannotSendReason())
}

func TestExternalRecipient(t *testing.T) {
	cl := generate(newMessage("").to("b@external.com", "c@x.com"), &rules.Snapshot{})
	require.Len(t, cl.To(), 2)
	assert.Equal(t, checklist.Address{Display: "b@external.com", IsExternal: true}, cl.To()[0])
	assert.Equal(t, checklist.Address{Display: "c@x.com"}, cl.To()[1])
}

func TestWhitelist(t *testing.T) {
	snap := &rules.Snapshot{Whitelist: []rules.Whitelist{{Fragment: "partner.com"}}}
	cl := generate(newMessage("").to("b@partner.com", "c@other.com"), snap)
	to := cl.To()
	require.Len(t, to, 2)
	assert.True(t, to[0].IsWhite)
	assert.True(t, to[0].IsChecked)
	assert.False(t, to[1].IsWhite)
	assert.False(t, to[1].IsChecked)
}

func TestAutoCheckSameDomain(t *testing.T) {
	g := &checklist.Generator{Text: stubText{}, Settings: checklist.Settings{AutoCheckSameDomain: true}}
	cl := g.Generate(newMessage("").to("b@x.com", "c@y.com"))
	to := cl.To()
	require.Len(t, to, 2)
	assert.True(t, to[0].IsChecked)
	assert.False(t, to[0].IsWhite)
	assert.False(t, to[1].IsChecked)
}

func TestAlertAddresses(t *testing.T) {
	snap := &rules.Snapshot{AlertAddresses: []rules.AlertAddress{
		{Fragment: "rival"},
		{Fragment: "rival.com", CannotSend: true},
	}}
	msg := newMessage("").
		to("a@rival.com").
		cc("b@rival.co.jp").
		bcc("c@rival.com", "d@y.com")

	cl := generate(msg, snap)
	assert.Equal(t, []string{
		"AlertTo[a@rival.com]",
		"AlertCc[b@rival.co.jp]",
		"AlertBcc[c@rival.com]",
	}, messages(cl.Alerts()), "one alert per recipient however many rows match")
	assert.True(t, cl.CannotSend())
	assert.Equal(t, "ForbiddenAddress[c@rival.com]", cl.CannotSendReason())
}

func TestSendBlockIsMonotonic(t *testing.T) {
	snap := &rules.Snapshot{
		AlertKeywords:  []rules.AlertKeyword{{Keyword: "secret", Message: "no secrets", CannotSend: true}},
		AlertAddresses: []rules.AlertAddress{{Fragment: "rival.com"}},
	}
	g := &checklist.Generator{
		Rules: snap,
		Text:  stubText{},
		Hook: checklist.HookFunc(func(in *checklist.Inspection) *checklist.Verdict {
			assert.True(t, in.CannotSend)
			return &checklist.Verdict{Block: false}
		}),
	}
	cl := g.Generate(newMessage("secret").to("a@rival.com"))
	assert.True(t, cl.CannotSend(), "non-blocking address alert and hook keep the block")
	assert.Equal(t, "no secrets", cl.CannotSendReason())

	snap.AlertAddresses[0].CannotSend = true
	cl = g.Generate(newMessage("secret").to("a@rival.com"))
	assert.True(t, cl.CannotSend())
	assert.Equal(t, "ForbiddenAddress[a@rival.com]", cl.CannotSendReason(), "later block replaces reason")
}

func TestDomainRelevance(t *testing.T) {
	snap := &rules.Snapshot{NameAndDomains: []rules.NameAndDomain{
		{Name: "Acme", Domain: "@acme.com"},
		{Name: "Globex", Domain: "@globex.com"},
	}}
	msg := newMessage("Dear Acme team").to("c@other.com", "d@acme.com", "e@x.com", "noat")

	cl := generate(msg, snap)
	assert.Equal(t, []string{
		"c@other.com : MaybeIrrelevant",
		"noat : MaybeIrrelevant",
	}, messages(cl.Alerts()))
	for _, a := range cl.Alerts() {
		assert.True(t, a.IsImportant)
	}

	cl = generate(newMessage("no names here").to("c@other.com"), snap)
	assert.Empty(t, cl.Alerts(), "no candidate names, no alerts")
}

func TestAttachmentReports(t *testing.T) {
	msg := newMessage("").
		attach("small.pdf", 1536).
		attach("huge.zip", checklist.DefaultOversizeBytes).
		attach("setup.exe", 100).
		attach("SETUP.EXE", 100).
		attach("noext", 0)
	msg.attachments = append(msg.attachments, &fakeAttachment{size: 2048, err: errors.New("no name")})

	cl := generate(msg, nil)
	assert.Equal(t, []checklist.AttachmentReport{
		{FileName: "small.pdf", Size: "2KB", Type: ".pdf"},
		{FileName: "huge.zip", Size: "10,240KB", Type: ".zip", IsTooBig: true},
		{FileName: "setup.exe", Size: "0KB", Type: ".exe", IsDangerous: true},
		{FileName: "SETUP.EXE", Size: "0KB", Type: ".EXE"},
		{FileName: "noext", Size: "0KB", Type: "Unknown"},
		{FileName: "Unknown", Size: "2KB", Type: "Unknown"},
	}, cl.Attachments())
	assert.Equal(t, []string{
		"BigAttachment[huge.zip]",
		"ExeAttachment[setup.exe]",
	}, messages(cl.Alerts()))
}

func TestOversizeAlertPerAttachment(t *testing.T) {
	msg := newMessage("").
		attach("a.bin", checklist.DefaultOversizeBytes-1).
		attach("b.bin", checklist.DefaultOversizeBytes).
		attach("c.bin", checklist.DefaultOversizeBytes*3)
	cl := generate(msg, nil)
	assert.Equal(t, []string{"BigAttachment[b.bin]", "BigAttachment[c.bin]"}, messages(cl.Alerts()))
	reports := cl.Attachments()
	assert.False(t, reports[0].IsTooBig)
	assert.True(t, reports[1].IsTooBig)
	assert.True(t, reports[2].IsTooBig)

	g := &checklist.Generator{Text: stubText{}, OversizeBytes: 100}
	cl = g.Generate(newMessage("").attach("a.bin", 100))
	assert.True(t, cl.Attachments()[0].IsTooBig)
}

func TestFormatSize(t *testing.T) {
	testCases := map[int64]string{
		0:            "0KB",
		511:          "0KB",
		512:          "1KB",
		1024:         "1KB",
		1535:         "1KB",
		1536:         "2KB",
		1235 * 1024:  "1,235KB",
		10485760:     "10,240KB",
		1073741824:   "1,048,576KB",
		1234567 * 10: "12,056KB",
	}
	for size, want := range testCases {
		assert.Equal(t, want, checklist.FormatSize(size), "size %d", size)
	}
}

func TestAlertOrder(t *testing.T) {
	snap := &rules.Snapshot{
		AlertKeywords:     []rules.AlertKeyword{{Keyword: "Acme", Message: "keyword"}},
		AutoCcBccKeywords: []rules.AutoCcBccKeyword{{Keyword: "Acme", Class: message.Bcc, Target: "log@x.com"}},
		AlertAddresses:    []rules.AlertAddress{{Fragment: "rival"}},
		NameAndDomains:    []rules.NameAndDomain{{Name: "Acme", Domain: "@acme.com"}},
	}
	g := &checklist.Generator{
		Rules: snap,
		Text:  stubText{},
		Hook: checklist.HookFunc(func(in *checklist.Inspection) *checklist.Verdict {
			return &checklist.Verdict{Alerts: []string{"hook"}}
		}),
	}
	msg := newMessage("Acme 添付").to("a@rival.com").attach("run.exe", checklist.DefaultOversizeBytes)

	cl := g.Generate(msg)
	assert.Equal(t, []string{
		"BigAttachment[run.exe]",
		"ExeAttachment[run.exe]",
		"keyword",
		"AutoAdd[BCC] [log@x.com] (ByKeyword 「Acme」)",
		"AlertTo[a@rival.com]",
		"a@rival.com : MaybeIrrelevant",
		"hook",
	}, messages(cl.Alerts()))
}

func TestHook(t *testing.T) {
	var got *checklist.Inspection
	g := &checklist.Generator{
		Text: stubText{},
		Hook: checklist.HookFunc(func(in *checklist.Inspection) *checklist.Verdict {
			got = in
			return &checklist.Verdict{Alerts: []string{"from hook"}, Block: true}
		}),
	}
	cl := g.Generate(newMessage("hi").to("b@y.com").cc("c@x.com").attach("a.txt", 1))

	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Sender)
	assert.Equal(t, "@x.com", got.SenderDomain)
	assert.Equal(t, []string{"b@y.com"}, got.To)
	assert.Equal(t, []string{"c@x.com"}, got.Cc)
	assert.Empty(t, got.Bcc)
	assert.Equal(t, []string{"a.txt"}, got.Attachments)
	assert.False(t, got.CannotSend)

	require.Len(t, cl.Alerts(), 1)
	assert.Equal(t, checklist.Alert{Message: "from hook", IsImportant: true}, cl.Alerts()[0])
	assert.True(t, cl.CannotSend())
	assert.Equal(t, "ExtensionAlert", cl.CannotSendReason())
}

func TestHookPanicIsIsolated(t *testing.T) {
	g := &checklist.Generator{
		Text: stubText{},
		Hook: checklist.HookFunc(func(in *checklist.Inspection) *checklist.Verdict {
			panic("boom")
		}),
	}
	var cl *checklist.CheckList
	require.NotPanics(t, func() { cl = g.Generate(newMessage("").to("b@x.com")) })
	assert.False(t, cl.CannotSend())
	assert.Len(t, cl.To(), 1)
}

func TestNeedsConfirmation(t *testing.T) {
	snap := &rules.Snapshot{Whitelist: []rules.Whitelist{{Fragment: "@partner.com"}}}
	internal := generate(newMessage("").to("b@x.com"), snap)
	white := generate(newMessage("").to("b@partner.com"), snap)
	mixed := generate(newMessage("").to("b@partner.com", "c@other.com"), snap)
	alerted := generate(newMessage("添付").to("b@x.com"), snap)

	assert.True(t, internal.NeedsConfirmation(checklist.Settings{}))
	assert.False(t, internal.NeedsConfirmation(checklist.Settings{SkipConfirmSameDomain: true}))
	assert.True(t, white.NeedsConfirmation(checklist.Settings{SkipConfirmSameDomain: true}))
	assert.False(t, white.NeedsConfirmation(checklist.Settings{SkipConfirmAllWhite: true}))
	assert.True(t, mixed.NeedsConfirmation(checklist.Settings{
		SkipConfirmAllWhite:   true,
		SkipConfirmSameDomain: true,
	}))
	assert.True(t, alerted.NeedsConfirmation(checklist.Settings{SkipConfirmSameDomain: true}),
		"important alerts always need review")
}

func TestAccessorsReturnCopies(t *testing.T) {
	cl := generate(newMessage("添付").to("b@x.com").attach("a.txt", 1), nil)
	cl.To()[0].Display = "changed"
	cl.Attachments()[0].FileName = "changed"
	assert.Equal(t, "b@x.com", cl.To()[0].Display)
	assert.Equal(t, "a.txt", cl.Attachments()[0].FileName)
}

func TestCheckListJSON(t *testing.T) {
	snap := &rules.Snapshot{AlertKeywords: []rules.AlertKeyword{
		{Keyword: "x", Message: "m", CannotSend: true},
	}}
	want := generate(newMessage("x").to("b@y.com").attach("a.exe", 1), snap)

	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cannotSendReason":"m"`)

	got := &checklist.CheckList{}
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, want.Alerts(), got.Alerts())
	assert.Equal(t, want.To(), got.To())
	assert.Equal(t, want.Attachments(), got.Attachments())
	assert.Equal(t, want.CannotSendReason(), got.CannotSendReason())
	assert.Equal(t, want.SenderDomain(), got.SenderDomain())
}
