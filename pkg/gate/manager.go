// Package gate checks outgoing messages against the rule tables and keeps an audit trail of the
// results.
package gate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/event"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/metric"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/rs/zerolog/log"
)

// ErrInvalidMessage is returned by Check when the message source cannot be parsed.
var ErrInvalidMessage = errors.New("invalid message")

// Manager is the interface controllers use to check messages and read the audit trail.
type Manager interface {
	Check(ctx context.Context, source []byte) (*Result, error)
	GetRecord(id string) (*storage.Record, error)
	ListRecords(limit int) ([]*storage.Record, error)
	RemoveRecord(id string) error
	PurgeRecords() error
}

// Result is the outcome of checking one message.
type Result struct {
	RecordID          string // Empty when no store is configured.
	Date              time.Time
	CheckList         *checklist.CheckList
	NeedsConfirmation bool
}

// RuleManager is a Manager that loads its rules from a rules.Provider for every check.
type RuleManager struct {
	Rules       rules.Provider
	Directory   message.Directory // Optional address book.
	Text        checklist.Text
	Store       storage.Store   // Optional audit trail.
	ExtHost     *extension.Host // Optional extension host.
	CheckConfig config.Check
}

var _ Manager = &RuleManager{}

// Check parses source as an RFC 5322 message, generates its check list, and records the result.
func (m *RuleManager) Check(ctx context.Context, source []byte) (*Result, error) {
	start := time.Now()
	res, err := m.check(ctx, source, start)
	metric.CheckDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metric.ChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	cl := res.CheckList
	switch {
	case cl.CannotSend():
		metric.ChecksTotal.WithLabelValues("blocked").Inc()
	case res.NeedsConfirmation:
		metric.ChecksTotal.WithLabelValues("confirm").Inc()
	default:
		metric.ChecksTotal.WithLabelValues("pass").Inc()
	}
	for _, a := range cl.Alerts() {
		if a.IsImportant {
			metric.AlertsTotal.WithLabelValues("important").Inc()
		} else {
			metric.AlertsTotal.WithLabelValues("normal").Inc()
		}
	}

	return res, nil
}

func (m *RuleManager) check(ctx context.Context, source []byte, date time.Time) (*Result, error) {
	snap, err := m.Rules.Load(ctx)
	if err != nil {
		metric.RulesLoadErrors.Inc()
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	draft, err := message.ParseDraft(bytes.NewReader(source), m.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	settings := m.settings()
	gen := &checklist.Generator{
		Rules:         snap,
		Text:          m.Text,
		Hook:          m.hook(),
		Settings:      settings,
		OversizeBytes: m.CheckConfig.OversizeBytes,
	}
	cl := gen.Generate(draft)
	res := &Result{
		Date:              date,
		CheckList:         cl,
		NeedsConfirmation: cl.NeedsConfirmation(settings),
	}

	logger := log.With().Str("module", "gate").Logger()
	if m.Store != nil {
		rec, err := storage.NewRecord(cl, res.NeedsConfirmation, date)
		if err != nil {
			return nil, err
		}
		res.RecordID, err = m.Store.AddRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("storing audit record: %w", err)
		}
		metric.RecordsStoredTotal.Inc()
	}
	logger.Debug().Str("record", res.RecordID).Int("alerts", len(cl.Alerts())).
		Bool("cannotSend", cl.CannotSend()).Msg("Generated check list")

	if m.ExtHost != nil {
		m.ExtHost.Events.AfterCheckListGenerated.Emit(checkResult(res))
	}

	return res, nil
}

// GetRecord returns the specified audit record.
func (m *RuleManager) GetRecord(id string) (*storage.Record, error) {
	if m.Store == nil {
		return nil, storage.ErrNotExist
	}
	return m.Store.GetRecord(id)
}

// ListRecords returns up to limit audit records, newest first.
func (m *RuleManager) ListRecords(limit int) ([]*storage.Record, error) {
	if m.Store == nil {
		return []*storage.Record{}, nil
	}
	return m.Store.GetRecords(limit)
}

// RemoveRecord deletes the specified audit record.
func (m *RuleManager) RemoveRecord(id string) error {
	if m.Store == nil {
		return storage.ErrNotExist
	}
	log.Debug().Str("module", "gate").Str("record", id).Msg("Removing record")
	return m.Store.RemoveRecord(id)
}

// PurgeRecords deletes every audit record.
func (m *RuleManager) PurgeRecords() error {
	if m.Store == nil {
		return nil
	}
	return m.Store.PurgeRecords()
}

func (m *RuleManager) settings() checklist.Settings {
	return checklist.Settings{
		SkipConfirmSameDomain: m.CheckConfig.SkipConfirmSameDomain,
		SkipConfirmAllWhite:   m.CheckConfig.SkipConfirmAllWhite,
		AutoCheckSameDomain:   m.CheckConfig.AutoCheckSameDomain,
	}
}

// hook routes the check list hook to the before-send extension listeners.
func (m *RuleManager) hook() checklist.Hook {
	if m.ExtHost == nil {
		return nil
	}
	return checklist.HookFunc(func(in *checklist.Inspection) *checklist.Verdict {
		v := m.ExtHost.Events.BeforeSendVerdict.Emit(&event.OutgoingMessage{
			Sender:       in.Sender,
			SenderDomain: in.SenderDomain,
			Subject:      in.Subject,
			Body:         in.Body,
			To:           in.To,
			Cc:           in.Cc,
			Bcc:          in.Bcc,
			Attachments:  in.Attachments,
			Alerts:       in.Alerts,
			CannotSend:   in.CannotSend,
		})
		if v == nil {
			return nil
		}
		return &checklist.Verdict{Alerts: v.Alerts, Block: v.Block, Reason: v.Reason}
	})
}

func checkResult(res *Result) *event.CheckResult {
	cl := res.CheckList
	alerts := cl.Alerts()
	msgs := make([]string, len(alerts))
	for i, a := range alerts {
		msgs[i] = a.Message
	}
	return &event.CheckResult{
		RecordID:          res.RecordID,
		Date:              res.Date,
		Sender:            cl.Sender(),
		Subject:           cl.Subject(),
		To:                displays(cl.To()),
		Cc:                displays(cl.Cc()),
		Bcc:               displays(cl.Bcc()),
		Alerts:            msgs,
		CannotSend:        cl.CannotSend(),
		Reason:            cl.CannotSendReason(),
		NeedsConfirmation: res.NeedsConfirmation,
	}
}

func displays(addrs []checklist.Address) []string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = a.Display
	}
	return s
}
