package test

import (
	"context"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/gate"
	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/rules"
)

// ManagerStub is a test stub for gate.Manager.  Checks run against a fixed rule snapshot and are
// recorded in a StoreStub.
type ManagerStub struct {
	*gate.RuleManager
	Store *StoreStub
	// CheckErr is returned by Check when set.
	CheckErr error
}

var _ gate.Manager = &ManagerStub{}

// NewManager creates a new ManagerStub checking with snap in English.
func NewManager(snap *rules.Snapshot) *ManagerStub {
	store := NewStore()
	return &ManagerStub{
		RuleManager: &gate.RuleManager{
			Rules:       &rules.Static{Snapshot: snap},
			Text:        l10n.English,
			Store:       store,
			CheckConfig: config.Check{OversizeBytes: 10485760},
		},
		Store: store,
	}
}

// Check returns CheckErr when set, and otherwise checks source.
func (m *ManagerStub) Check(ctx context.Context, source []byte) (*gate.Result, error) {
	if m.CheckErr != nil {
		return nil, m.CheckErr
	}
	return m.RuleManager.Check(ctx, source)
}
