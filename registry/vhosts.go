// Package registry maintains the authoritative vhost name to CID mapping and
// keeps it synchronized with the durable record shared by all gateway
// instances: a content-addressed JSON blob referenced by a mutable name
// record.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ruteri/ipfs-vhost-gateway/cidutil"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
	"go.uber.org/atomic"
)

const (
	// DefaultRefreshInterval is how often the background loop re-reads the
	// durable record.
	DefaultRefreshInterval = 10 * time.Second

	// DefaultRecordLifetime is the validity window of the published name
	// record.
	DefaultRecordLifetime = 365 * 24 * time.Hour
)

var (
	refreshOKCounter     = metrics.GetOrCreateCounter("vhost_registry_refresh_total")
	refreshFailedCounter = metrics.GetOrCreateCounter("vhost_registry_refresh_failed_total")
	publishOKCounter     = metrics.GetOrCreateCounter("vhost_registry_publish_total")
	publishFailedCounter = metrics.GetOrCreateCounter("vhost_registry_publish_failed_total")
)

var _ interfaces.VhostController = (*VhostRegistry)(nil)

// Config carries the registry's dependencies and tunables.
type Config struct {
	// Client is the storage network boundary.
	Client interfaces.StorageClient

	// PublishedName is the mutable name the durable record is fetched
	// under ("/ipns/<PublishedName>").
	PublishedName string

	// KeyName identifies the private key the name record is signed with.
	KeyName string

	// RecordLifetime is the lifetime of published name records.
	// Defaults to DefaultRecordLifetime.
	RecordLifetime time.Duration

	// RefreshInterval is the background refresh period.
	// Defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration

	Log *slog.Logger
}

// VhostRegistry holds the current vhost mapping snapshot and implements the
// control-plane operations on it.
//
// The snapshot is the only shared mutable state: it is replaced wholesale by
// an atomic pointer swap and never mutated in place, so concurrent readers
// always observe a consistent, if possibly stale, mapping.
//
// Write operations follow a strict refresh, mutate, publish sequence against
// the shared durable record. There is no distributed lock, so two writers
// racing on the same record can still lose one update to the other; the
// sequence is kept behind a single mutate function so an optimistic
// concurrency token can be added without touching callers.
type VhostRegistry struct {
	client         interfaces.StorageClient
	publishedName  string
	keyName        string
	recordLifetime time.Duration
	interval       time.Duration
	log            *slog.Logger

	snapshot atomic.Pointer[interfaces.Mapping]
	done     chan struct{}
	stopped  chan struct{}
}

// New creates a vhost registry with an empty snapshot. Call Refresh (or start
// the background loop) to load the durable record.
func New(cfg Config) (*VhostRegistry, error) {
	if cfg.Client == nil {
		return nil, errors.New("registry: storage client is required")
	}
	if cfg.PublishedName == "" {
		return nil, errors.New("registry: published name is required")
	}
	if cfg.KeyName == "" {
		return nil, errors.New("registry: key name is required")
	}
	if cfg.RecordLifetime == 0 {
		cfg.RecordLifetime = DefaultRecordLifetime
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}

	r := &VhostRegistry{
		client:         cfg.Client,
		publishedName:  cfg.PublishedName,
		keyName:        cfg.KeyName,
		recordLifetime: cfg.RecordLifetime,
		interval:       cfg.RefreshInterval,
		log:            cfg.Log,
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}

	empty := interfaces.Mapping{}
	r.snapshot.Store(&empty)
	return r, nil
}

// Snapshot returns the current mapping. Callers must treat it as read-only.
func (r *VhostRegistry) Snapshot() interfaces.Mapping {
	return *r.snapshot.Load()
}

// Refresh fetches the durable record and atomically swaps in the decoded
// mapping. On any failure the previous snapshot stays authoritative.
func (r *VhostRegistry) Refresh(ctx context.Context) error {
	data, err := r.client.FetchByPath(ctx, "/ipns/"+r.publishedName)
	if err != nil {
		refreshFailedCounter.Inc()
		return fmt.Errorf("failed to fetch durable record: %w", err)
	}

	var next interfaces.Mapping
	if err := json.Unmarshal(data, &next); err != nil {
		refreshFailedCounter.Inc()
		return fmt.Errorf("durable record is not a valid mapping: %w", err)
	}
	if next == nil {
		next = interfaces.Mapping{}
	}

	r.snapshot.Store(&next)
	refreshOKCounter.Inc()
	r.log.Debug("Refreshed vhost mapping", slog.Int("vhosts", len(next)))
	return nil
}

// Publish serializes the mapping, stores it as a content-addressed blob and
// re-points the name record at it. On error the durable record must be
// assumed unchanged.
func (r *VhostRegistry) Publish(ctx context.Context, m interfaces.Mapping) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize mapping: %w", err)
	}

	cid, err := r.client.AddContent(ctx, data)
	if err != nil {
		publishFailedCounter.Inc()
		return fmt.Errorf("failed to store mapping: %w", err)
	}

	err = r.client.PublishName(ctx, cid, interfaces.PublishOptions{
		Key:      r.keyName,
		Lifetime: r.recordLifetime,
	})
	if err != nil {
		publishFailedCounter.Inc()
		return fmt.Errorf("failed to publish name record: %w", err)
	}

	publishOKCounter.Inc()
	r.log.Info("Published vhost mapping", slog.String("cid", cid), slog.Int("vhosts", len(m)))
	return nil
}

// RunInBackground starts the periodic refresh loop. Errors are logged and
// swallowed; a failed refresh keeps the previous snapshot and is retried on
// the next tick.
func (r *VhostRegistry) RunInBackground() {
	go func() {
		defer close(r.stopped)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := r.Refresh(context.Background()); err != nil {
					r.log.Warn("Background refresh failed, keeping stale mapping", "err", err)
				}
			case <-r.done:
				return
			}
		}
	}()
}

// Stop cancels the background refresh loop and waits for it to exit.
func (r *VhostRegistry) Stop() {
	close(r.done)
	<-r.stopped
}

// List returns all vhost entries sorted by name, after a best-effort refresh.
func (r *VhostRegistry) List(ctx context.Context) []interfaces.VhostEntry {
	if err := r.Refresh(ctx); err != nil {
		r.log.Warn("Refresh before list failed, serving stale mapping", "err", err)
	}
	return r.Snapshot().Entries()
}

// Get returns the entry for name, after a best-effort refresh.
func (r *VhostRegistry) Get(ctx context.Context, name string) (interfaces.VhostEntry, error) {
	if err := r.Refresh(ctx); err != nil {
		r.log.Warn("Refresh before get failed, serving stale mapping", "err", err)
	}

	cid, ok := r.Snapshot()[name]
	if !ok {
		return interfaces.VhostEntry{}, interfaces.ErrNotFound
	}
	return interfaces.VhostEntry{Name: name, CID: cid}, nil
}

// Create registers name -> cid, or overwrites an existing binding.
func (r *VhostRegistry) Create(ctx context.Context, name, cid string) error {
	if !interfaces.VhostName(name).Valid() {
		return interfaces.ErrNameReserved
	}
	if !cidutil.IsValid(cid) {
		return interfaces.ErrInvalidCID
	}

	return r.mutate(ctx, func(m interfaces.Mapping) error {
		m[name] = cid
		return nil
	})
}

// Update re-points an existing vhost at a new CID. Unlike Create it requires
// the name to already exist.
func (r *VhostRegistry) Update(ctx context.Context, name, cid string) error {
	if !cidutil.IsValid(cid) {
		return interfaces.ErrInvalidCID
	}

	return r.mutate(ctx, func(m interfaces.Mapping) error {
		if _, ok := m[name]; !ok {
			return interfaces.ErrNotFound
		}
		m[name] = cid
		return nil
	})
}

// Delete removes a vhost binding.
func (r *VhostRegistry) Delete(ctx context.Context, name string) error {
	return r.mutate(ctx, func(m interfaces.Mapping) error {
		if _, ok := m[name]; !ok {
			return interfaces.ErrNotFound
		}
		delete(m, name)
		return nil
	})
}

// mutate runs the refresh, mutate, publish sequence for a single write.
// The refresh narrows the lost-update window against other writers sharing
// the durable record; a refresh failure aborts the write rather than
// publishing a mutation on top of an unknown-stale base. A publish failure
// is returned to the caller: a write that cannot be made durable must not
// report success.
func (r *VhostRegistry) mutate(ctx context.Context, fn func(interfaces.Mapping) error) error {
	if err := r.Refresh(ctx); err != nil {
		if !errors.Is(err, interfaces.ErrContentNotFound) {
			return err
		}
		// No record published yet: first write starts from the empty mapping.
		r.log.Debug("No durable record found, starting from empty mapping")
	}

	next := r.Snapshot().Clone()
	if err := fn(next); err != nil {
		return err
	}

	r.snapshot.Store(&next)
	return r.Publish(ctx, next)
}
