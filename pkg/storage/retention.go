package storage

import (
	"time"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/metric"
	"github.com/rs/zerolog/log"
)

// RetentionScanner looks for records older than the configured retention period and deletes them.
type RetentionScanner struct {
	globalShutdown    chan bool // Closes when okan needs to shut down.
	retentionShutdown chan bool // Closed after the scanner has shut down.
	store             Store
	retentionPeriod   time.Duration
	retentionSleep    time.Duration
	minInterval       time.Duration // Minimum time between scan starts.
}

// NewRetentionScanner configures a new RetentionScanner.
func NewRetentionScanner(
	cfg config.Storage,
	store Store,
	shutdownChannel chan bool,
) *RetentionScanner {
	rs := &RetentionScanner{
		globalShutdown:    shutdownChannel,
		retentionShutdown: make(chan bool),
		store:             store,
		retentionPeriod:   cfg.RetentionPeriod,
		retentionSleep:    cfg.RetentionSleep,
		minInterval:       time.Minute,
	}
	metric.RetentionPeriod.Set(cfg.RetentionPeriod.Seconds())
	return rs
}

// Start up the retention scanner if retention period > 0.
func (rs *RetentionScanner) Start() {
	slog := log.With().Str("module", "storage").Logger()
	if rs.retentionPeriod <= 0 {
		slog.Info().Str("phase", "startup").Msg("Retention scanner disabled")
		close(rs.retentionShutdown)
		return
	}
	slog.Info().Str("phase", "startup").Msgf("Retention configured for %v", rs.retentionPeriod)
	go rs.run()
}

// run loops to kick off the scanner on the correct schedule.
func (rs *RetentionScanner) run() {
	slog := log.With().Str("module", "storage").Logger()
	start := time.Now()
retentionLoop:
	for {
		// Prevent scanner from starting more than once per interval.
		since := time.Since(start)
		if since < rs.minInterval {
			dur := rs.minInterval - since
			slog.Debug().Msgf("Retention scanner sleeping for %v", dur)
			select {
			case <-rs.globalShutdown:
				break retentionLoop
			case <-time.After(dur):
			}
		}
		start = time.Now()
		if err := rs.DoScan(); err != nil {
			slog.Error().Err(err).Msg("Error during retention scan")
		}
		select {
		case <-rs.globalShutdown:
			break retentionLoop
		default:
		}
	}
	slog.Debug().Str("phase", "shutdown").Msg("Retention scanner shut down")
	close(rs.retentionShutdown)
}

// DoScan does a single pass of all records, deleting those older than the retention period.
func (rs *RetentionScanner) DoScan() error {
	slog := log.With().Str("module", "storage").Logger()
	slog.Debug().Msg("Starting retention scan")
	cutoff := time.Now().Add(-1 * rs.retentionPeriod)
	retained := 0
	err := rs.store.VisitRecords(func(records []*Record) bool {
		for _, r := range records {
			if r.Date.Before(cutoff) {
				slog.Debug().Str("record", r.ID).Msg("Purging expired record")
				if err := rs.store.RemoveRecord(r.ID); err != nil {
					slog.Error().Str("record", r.ID).Err(err).Msg("Failed to purge record")
				} else {
					metric.RetentionDeletesTotal.Inc()
				}
			} else {
				retained++
			}
		}
		select {
		case <-rs.globalShutdown:
			slog.Debug().Str("phase", "shutdown").Msg("Retention scan aborted due to shutdown")
			return false
		case <-time.After(rs.retentionSleep):
			// Reduce storage thrashing.
		}
		return true
	})
	if err != nil {
		return err
	}
	metric.RetentionScanCompleted.SetToCurrentTime()
	metric.RetainedRecords.Set(float64(retained))
	return nil
}

// Join does not return until the retention scanner has shut down.
func (rs *RetentionScanner) Join() {
	if rs.retentionShutdown != nil {
		<-rs.retentionShutdown
	}
}
