package storage_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/okanmail/okan/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRetentionScan(t *testing.T) {
	ds := test.NewStore()

	// Records of different ages, in hours.
	ages := map[string]int{"new1": 0, "new2": 1, "new3": 2, "old1": 4, "old2": 12, "old3": 24}
	for name, hours := range ages {
		rec := test.NewRecord(t, fmt.Sprintf("age %dh", hours), time.Now().Add(-time.Duration(hours)*time.Hour))
		rec.ID = name
		_, err := ds.AddRecord(rec)
		require.NoError(t, err)
	}

	// Test 4 hour retention.
	cfg := config.Storage{
		RetentionPeriod: 239 * time.Minute,
		RetentionSleep:  0,
	}
	shutdownChan := make(chan bool)
	rs := storage.NewRetentionScanner(cfg, ds, shutdownChan)
	require.NoError(t, rs.DoScan())

	for _, name := range []string{"new1", "new2", "new3"} {
		assert.False(t, ds.RecordDeleted(name), "%s should be retained", name)
	}
	for _, name := range []string{"old1", "old2", "old3"} {
		assert.True(t, ds.RecordDeleted(name), "%s should be deleted", name)
	}
}

func TestRetentionDisabled(t *testing.T) {
	rs := storage.NewRetentionScanner(config.Storage{}, test.NewStore(), make(chan bool))
	rs.Start()

	done := make(chan struct{})
	go func() {
		rs.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("disabled scanner did not shut down")
	}
}

func TestRetentionShutdown(t *testing.T) {
	shutdown := make(chan bool)
	rs := storage.NewRetentionScanner(config.Storage{RetentionPeriod: time.Hour}, test.NewStore(),
		shutdown)
	rs.Start()
	close(shutdown)

	done := make(chan struct{})
	go func() {
		rs.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not shut down")
	}
}
