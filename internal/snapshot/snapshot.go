package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chandana/internal/domain"
	"chandana/internal/notify"
	"chandana/internal/pipeline"
	"chandana/internal/source"
	"chandana/internal/storage/sqlite"
)

// TableLoader is satisfied by *source.Loader.
type TableLoader interface {
	Load(ctx context.Context) (domain.Table, error)
}

// Snapshot is one immutable load of both datasets and everything derived
// from them. Handlers must not modify it.
type Snapshot struct {
	ID         string
	LoadedAt   time.Time
	HPLC       pipeline.HPLC
	HPOS       pipeline.HPOS
	HPLCOrigin domain.Origin
	HPOSOrigin domain.Origin
	// Warnings collects load substitutions and pipeline degradations.
	Warnings []string
}

func (s *Snapshot) Summary(target int, now time.Time) pipeline.Summary {
	return pipeline.Summarize(s.HPLC, s.HPOS.Table.Len(), target, now)
}

type Options struct {
	TTL           time.Duration
	Thresholds    domain.Thresholds
	Pipeline      pipeline.Options
	SyntheticRows int
	SyntheticSeed int64
}

// Cache memoizes the current snapshot for TTL. A TTL of zero reloads on
// every Get.
type Cache struct {
	hplc     TableLoader
	hpos     TableLoader
	opts     Options
	db       *sql.DB
	notifier notify.Notifier
	now      func() time.Time

	mu      sync.Mutex
	current *Snapshot
}

func NewCache(hplc, hpos TableLoader, opts Options, db *sql.DB, notifier notify.Notifier) *Cache {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if opts.SyntheticRows <= 0 {
		opts.SyntheticRows = 250
	}
	if opts.Thresholds == (domain.Thresholds{}) {
		opts.Thresholds = domain.DefaultThresholds
	}
	return &Cache{hplc: hplc, hpos: hpos, opts: opts, db: db, notifier: notifier, now: time.Now}
}

// SetClock replaces the time source.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the memoized snapshot, loading a fresh one when it is missing
// or older than the TTL.
func (c *Cache) Get(ctx context.Context) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.now().Sub(c.current.LoadedAt) < c.opts.TTL {
		return c.current
	}
	c.current = c.load(ctx)
	return c.current
}

// Refresh drops the memoized snapshot and loads a new one unconditionally.
func (c *Cache) Refresh(ctx context.Context) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.current = c.load(ctx)
	return c.current
}

func (c *Cache) load(ctx context.Context) *Snapshot {
	snap := &Snapshot{ID: uuid.NewString(), LoadedAt: c.now()}
	log.Printf("snapshot load start id=%s", snap.ID)

	hplcRaw, hplcOrigin, hplcWarn := c.loadOrSynthesize(ctx, "HPLC", c.hplc, source.SyntheticHPLC)
	hposRaw, hposOrigin, hposWarn := c.loadOrSynthesize(ctx, "HPOS", c.hpos, source.SyntheticHPOS)
	snap.HPLCOrigin, snap.HPOSOrigin = hplcOrigin, hposOrigin

	snap.HPLC = pipeline.BuildHPLC(hplcRaw, c.opts.Pipeline)
	snap.HPOS = pipeline.BuildHPOS(hposRaw, c.opts.Thresholds)

	snap.Warnings = append(snap.Warnings, hplcWarn...)
	snap.Warnings = append(snap.Warnings, hposWarn...)
	snap.Warnings = append(snap.Warnings, snap.HPLC.Warnings...)
	snap.Warnings = append(snap.Warnings, snap.HPOS.Warnings...)

	c.record(snap, hplcWarn, hposWarn)
	summary := FormatLoadSummary(snap)
	log.Printf("snapshot load done id=%s: %s", snap.ID, strings.ReplaceAll(summary, "\n", " | "))
	if hplcOrigin == domain.OriginSynthetic || hposOrigin == domain.OriginSynthetic {
		if err := c.notifier.Notify(ctx, "Dashboard data refresh: "+summary); err != nil {
			log.Printf("snapshot notify error: %v", err)
		}
	}
	return snap
}

func (c *Cache) loadOrSynthesize(ctx context.Context, name string, l TableLoader, synth func(int, int64) domain.Table) (domain.Table, domain.Origin, []string) {
	if l != nil {
		table, err := l.Load(ctx)
		if err == nil {
			return table, originOf(l), nil
		}
		log.Printf("snapshot %s load error: %v", strings.ToLower(name), err)
		return synth(c.opts.SyntheticRows, c.opts.SyntheticSeed), domain.OriginSynthetic,
			[]string{fmt.Sprintf("%s data could not be loaded (%v); showing synthetic data", name, err)}
	}
	return synth(c.opts.SyntheticRows, c.opts.SyntheticSeed), domain.OriginSynthetic,
		[]string{fmt.Sprintf("%s source is not configured; showing synthetic data", name)}
}

func originOf(l TableLoader) domain.Origin {
	if sl, ok := l.(*source.Loader); ok && !source.IsRemote(sl.Source) {
		return domain.OriginFile
	}
	return domain.OriginRemote
}

func (c *Cache) record(snap *Snapshot, hplcWarn, hposWarn []string) {
	if c.db == nil {
		return
	}
	events := []domain.LoadEvent{
		{SnapshotID: snap.ID, Dataset: "hplc", Origin: snap.HPLCOrigin, Rows: snap.HPLC.Table.Len(),
			Warnings: strings.Join(append(hplcWarn, snap.HPLC.Warnings...), "\n"), LoadedAt: snap.LoadedAt},
		{SnapshotID: snap.ID, Dataset: "hpos", Origin: snap.HPOSOrigin, Rows: snap.HPOS.Table.Len(),
			Warnings: strings.Join(append(hposWarn, snap.HPOS.Warnings...), "\n"), LoadedAt: snap.LoadedAt},
	}
	if _, err := sqlite.InsertLoadEvents(c.db, events); err != nil {
		log.Printf("snapshot record error id=%s: %v", snap.ID, err)
	}
}

// FormatLoadSummary returns a human-readable summary of a snapshot load.
func FormatLoadSummary(snap *Snapshot) string {
	msg := fmt.Sprintf("Loaded %d HPLC rows (%s) and %d HPOS rows (%s)",
		snap.HPLC.Table.Len(), snap.HPLCOrigin, snap.HPOS.Table.Len(), snap.HPOSOrigin)
	if len(snap.Warnings) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(snap.Warnings, "\n"))
	}
	return msg
}
