package message_test

import (
	"strings"
	"testing"

	"github.com/okanmail/okan/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBook = `
users:
  - name: Taro Yamada
    address: taro@example.co.jp
    aliases: [/o=example/cn=taro]
lists:
  - name: Sales
    address: sales@example.co.jp
contacts:
  - name: Acme Support
    address: support@acme.com
`

func TestRecipientClassText(t *testing.T) {
	for _, tc := range []struct {
		class message.RecipientClass
		text  string
	}{
		{message.To, "TO"},
		{message.Cc, "CC"},
		{message.Bcc, "BCC"},
	} {
		t.Run(tc.text, func(t *testing.T) {
			b, err := tc.class.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tc.text, string(b))

			var got message.RecipientClass
			require.NoError(t, got.UnmarshalText([]byte(strings.ToLower(tc.text))))
			assert.Equal(t, tc.class, got)
		})
	}

	_, err := message.ParseRecipientClass("FROM")
	assert.Error(t, err)
	_, err = message.RecipientClass(9).MarshalText()
	assert.Error(t, err)
}

func TestBookLookup(t *testing.T) {
	book, err := message.ReadBook(strings.NewReader(testBook))
	require.NoError(t, err)

	got := book.User("TARO@example.co.jp")
	require.NotNil(t, got)
	assert.Equal(t, "Taro Yamada", got.Name)

	got = book.User("/o=example/cn=taro")
	require.NotNil(t, got)
	assert.Equal(t, "taro@example.co.jp", got.Address)

	assert.NotNil(t, book.List("sales@example.co.jp"))
	assert.Nil(t, book.List("taro@example.co.jp"))
	assert.NotNil(t, book.Contact("support@acme.com"))
	assert.Nil(t, book.Contact(""))
}

func TestReadBookEmpty(t *testing.T) {
	book, err := message.ReadBook(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, book.User("anyone@example.com"))
}

func TestLoadBookMissingFile(t *testing.T) {
	book, err := message.LoadBook(t.TempDir() + "/nope.yaml")
	require.NoError(t, err)
	assert.Empty(t, book.Users)
}

func TestDraftSender(t *testing.T) {
	d := &message.Draft{}
	_, err := d.Sender()
	assert.ErrorIs(t, err, message.ErrNoSender)
	_, err = d.SenderFallback()
	assert.ErrorIs(t, err, message.ErrNoSender)

	d.AccountAddress = "me@example.co.jp"
	d.FromAddress = "alias@example.co.jp"
	got, err := d.Sender()
	require.NoError(t, err)
	assert.Equal(t, "me@example.co.jp", got)
	got, err = d.SenderFallback()
	require.NoError(t, err)
	assert.Equal(t, "alias@example.co.jp", got)
}

func TestDraftAddRecipient(t *testing.T) {
	d := &message.Draft{}
	assert.Error(t, d.AddRecipient("  ", message.To))
	assert.Error(t, d.AddRecipient("a@example.com", message.RecipientClass(0)))
	require.NoError(t, d.AddRecipient("a@example.com", message.Cc))

	rs := d.Recipients()
	require.Len(t, rs, 1)
	assert.Equal(t, "a@example.com", rs[0].Name())
	assert.Equal(t, message.Cc, rs[0].Class())
	assert.Nil(t, rs[0].Entry(), "recipient should be unresolved")
}

func TestDraftResolveAll(t *testing.T) {
	book, err := message.ReadBook(strings.NewReader(testBook))
	require.NoError(t, err)
	d := &message.Draft{Directory: book}
	require.NoError(t, d.AddRecipient("/o=example/cn=taro", message.To))
	require.NoError(t, d.AddRecipient("support@acme.com", message.Cc))
	require.NoError(t, d.AddRecipient("stranger@example.net", message.Bcc))
	require.NoError(t, d.ResolveAll())

	rs := d.Recipients()
	require.Len(t, rs, 3)

	user, err := rs[0].Entry().DirectoryUser()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "taro@example.co.jp", user.Address)

	assert.Equal(t, "Acme Support", rs[1].Name())
	contact, err := rs[1].Entry().Contact()
	require.NoError(t, err)
	assert.NotNil(t, contact)

	require.NotNil(t, rs[2].Entry())
	user, _ = rs[2].Entry().DirectoryUser()
	list, _ := rs[2].Entry().DistributionList()
	contact, _ = rs[2].Entry().Contact()
	assert.Nil(t, user)
	assert.Nil(t, list)
	assert.Nil(t, contact)
}

func TestFileName(t *testing.T) {
	f := &message.File{Name: "a.txt", Bytes: 3}
	name, err := f.FileName()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name)
	assert.Equal(t, int64(3), f.Size())

	f.Err = message.ErrNoFileName
	_, err = f.FileName()
	assert.ErrorIs(t, err, message.ErrNoFileName)
}

func TestParseDraft(t *testing.T) {
	book, err := message.ReadBook(strings.NewReader(testBook))
	require.NoError(t, err)
	raw := "From: Taro Yamada <taro@example.co.jp>\r\n" +
		"To: Acme <support@acme.com>, sales@example.co.jp\r\n" +
		"Cc: boss@example.co.jp\r\n" +
		"Subject: Quote\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"XXX\"\r\n" +
		"\r\n" +
		"--XXX\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Please find the quote attached.\r\n" +
		"--XXX\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"Content-Disposition: attachment; filename=\"quote.pdf\"\r\n" +
		"\r\n" +
		"0123456789\r\n" +
		"--XXX--\r\n"

	d, err := message.ParseDraft(strings.NewReader(raw), book)
	require.NoError(t, err)

	_, err = d.Sender()
	assert.ErrorIs(t, err, message.ErrNoSender, "no Sender header present")
	from, err := d.SenderFallback()
	require.NoError(t, err)
	assert.Equal(t, "taro@example.co.jp", from)
	assert.Equal(t, "Quote", d.Subject())
	assert.Contains(t, d.Body(), "quote attached")
	assert.Equal(t, message.FormatPlain, d.BodyFormat())

	rs := d.Recipients()
	require.Len(t, rs, 3)
	assert.Equal(t, "support@acme.com", rs[0].Address())
	assert.Equal(t, message.To, rs[0].Class())
	assert.Equal(t, "Acme", rs[0].Name())
	assert.Equal(t, message.Cc, rs[2].Class())
	for _, r := range rs {
		assert.NotNil(t, r.Entry(), "%s should be resolved", r.Address())
	}

	as := d.Attachments()
	require.Len(t, as, 1)
	name, err := as[0].FileName()
	require.NoError(t, err)
	assert.Equal(t, "quote.pdf", name)
	assert.Positive(t, as[0].Size())
}

func TestParseDraftHTML(t *testing.T) {
	raw := "Sender: me@example.co.jp\r\n" +
		"From: team@example.co.jp\r\n" +
		"To: a@example.com\r\n" +
		"Subject: Hi\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Hello</p>\r\n"

	d, err := message.ParseDraft(strings.NewReader(raw), nil)
	require.NoError(t, err)
	sender, err := d.Sender()
	require.NoError(t, err)
	assert.Equal(t, "me@example.co.jp", sender)
	assert.Equal(t, message.FormatHTML, d.BodyFormat())
	assert.Contains(t, d.HTMLBody(), "<p>Hello</p>")
	assert.Contains(t, d.Body(), "Hello")
}
