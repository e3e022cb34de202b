package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/gate"
	"github.com/okanmail/okan/pkg/rest/model"
	"github.com/okanmail/okan/pkg/sanitize"
	"github.com/okanmail/okan/pkg/server/web"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/rs/zerolog/log"
)

// CheckListV1 checks the RFC 5322 message in the request body and renders its check list.
func CheckListV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	limit := ctx.RootConfig.Web.MaxBodyBytes
	if limit > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, limit)
	}
	source, err := io.ReadAll(req.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return nil
		}
		return fmt.Errorf("reading message: %w", err)
	}

	res, err := ctx.Manager.Check(req.Context(), source)
	if errors.Is(err, gate.ErrInvalidMessage) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	jcl, err := CheckListToJSON(res.CheckList, ctx.RootConfig.Web.SanitizeHTML)
	if err != nil {
		return err
	}
	jcl.ID = res.RecordID
	jcl.Date = res.Date
	jcl.NeedsConfirmation = res.NeedsConfirmation
	if res.RecordID != "" {
		w.Header().Set("Location", web.Reverse("AuditShowV1", "id", res.RecordID))
	}
	return web.RenderJSON(w, http.StatusOK, jcl)
}

// AuditListV1 renders the newest audit record headers.  The optional limit query parameter caps
// the number of records.
func AuditListV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	limit := 0
	if s := req.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return nil
		}
	}
	records, err := ctx.Manager.ListRecords(limit)
	if err != nil {
		// This doesn't indicate empty, likely an IO error.
		return fmt.Errorf("failed to list records: %w", err)
	}
	log.Debug().Str("module", "rest").Int("count", len(records)).Msg("Listed audit records")

	headers := make([]*model.JSONRecordHeaderV1, len(records))
	for i, r := range records {
		headers[i] = recordToHeader(r)
	}
	return web.RenderJSON(w, http.StatusOK, headers)
}

// AuditShowV1 renders one audit record including its check list.
func AuditShowV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	// Don't have to validate these aren't empty, Gorilla returns 404.
	id := ctx.Vars["id"]
	rec, err := ctx.Manager.GetRecord(id)
	if errors.Is(err, storage.ErrNotExist) {
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		// This doesn't indicate missing, likely an IO error.
		return fmt.Errorf("GetRecord(%q) failed: %w", id, err)
	}
	cl, err := rec.DecodeCheckList()
	if err != nil {
		return err
	}
	jcl, err := CheckListToJSON(cl, ctx.RootConfig.Web.SanitizeHTML)
	if err != nil {
		return err
	}
	jcl.ID = rec.ID
	jcl.Date = rec.Date
	jcl.NeedsConfirmation = rec.NeedsConfirmation

	return web.RenderJSON(w, http.StatusOK, &model.JSONRecordV1{
		JSONRecordHeaderV1: *recordToHeader(rec),
		CheckList:          jcl,
	})
}

// AuditDeleteV1 removes one audit record.
func AuditDeleteV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	// Don't have to validate these aren't empty, Gorilla returns 404.
	id := ctx.Vars["id"]
	err = ctx.Manager.RemoveRecord(id)
	if errors.Is(err, storage.ErrNotExist) {
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		// This doesn't indicate missing, likely an IO error.
		return fmt.Errorf("RemoveRecord(%q) failed: %w", id, err)
	}

	return web.RenderJSON(w, http.StatusOK, "OK")
}

// AuditPurgeV1 removes every audit record.
func AuditPurgeV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Manager.PurgeRecords(); err != nil {
		return fmt.Errorf("audit purge failed: %w", err)
	}
	log.Debug().Str("module", "rest").Msg("Purged audit records")

	return web.RenderJSON(w, http.StatusOK, "OK")
}

func recordToHeader(r *storage.Record) *model.JSONRecordHeaderV1 {
	return &model.JSONRecordHeaderV1{
		ID:                r.ID,
		Date:              r.Date,
		PosixMillis:       r.Date.UnixNano() / int64(time.Millisecond),
		Sender:            r.Sender,
		Subject:           r.Subject,
		ToCount:           r.ToCount,
		CcCount:           r.CcCount,
		BccCount:          r.BccCount,
		AlertCount:        r.AlertCount,
		CannotSend:        r.CannotSend,
		Reason:            r.Reason,
		NeedsConfirmation: r.NeedsConfirmation,
	}
}

// CheckListToJSON converts cl, leaving the ID, date and confirmation fields to the caller.
func CheckListToJSON(cl *checklist.CheckList, sanitizeHTML bool) (*model.JSONCheckListV1, error) {
	body := &model.JSONBodyV1{Text: cl.Body(), HTML: cl.HTMLBody()}
	if sanitizeHTML {
		html, err := sanitize.Body(cl.Body(), cl.HTMLBody())
		if err != nil {
			return nil, fmt.Errorf("sanitizing body: %w", err)
		}
		body.HTML = html
	}

	alerts := cl.Alerts()
	jalerts := make([]*model.JSONAlertV1, len(alerts))
	for i, a := range alerts {
		jalerts[i] = &model.JSONAlertV1{
			Message:   a.Message,
			Important: a.IsImportant,
			White:     a.IsWhite,
			Checked:   a.IsChecked,
		}
	}

	atts := cl.Attachments()
	jatts := make([]*model.JSONAttachmentV1, len(atts))
	for i, a := range atts {
		jatts[i] = &model.JSONAttachmentV1{
			FileName:  a.FileName,
			Size:      a.Size,
			Type:      a.Type,
			TooBig:    a.IsTooBig,
			Dangerous: a.IsDangerous,
			Encrypted: a.IsEncrypted,
		}
	}

	return &model.JSONCheckListV1{
		Sender:           cl.Sender(),
		SenderDomain:     cl.SenderDomain(),
		Subject:          cl.Subject(),
		MailType:         cl.MailType(),
		Body:             body,
		Alerts:           jalerts,
		To:               addressesToJSON(cl.To()),
		Cc:               addressesToJSON(cl.Cc()),
		Bcc:              addressesToJSON(cl.Bcc()),
		Attachments:      jatts,
		CannotSend:       cl.CannotSend(),
		CannotSendReason: cl.CannotSendReason(),
	}, nil
}

func addressesToJSON(addrs []checklist.Address) []*model.JSONAddressV1 {
	j := make([]*model.JSONAddressV1, len(addrs))
	for i, a := range addrs {
		j[i] = &model.JSONAddressV1{
			Display:  a.Display,
			External: a.IsExternal,
			White:    a.IsWhite,
			Checked:  a.IsChecked,
		}
	}
	return j
}
