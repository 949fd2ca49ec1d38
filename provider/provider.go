// Package provider resolves schema references into immutable snapshots.
// Live databases are probed through their catalog tables, file references
// are loaded from YAML, and every resolved snapshot is cached so repeated
// validations against the same reference never probe twice.
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	querylint "github.com/querylint/querylint"
)

const defaultProbeTimeout = 30 * time.Second

// Option configures a Provider.
type Option func(*Provider)

// WithProbeTimeout bounds how long a single schema probe may take.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithExtractConfig sets the table filters applied during live probes.
func WithExtractConfig(config ExtractConfig) Option {
	return func(p *Provider) {
		p.extract = config
	}
}

// WithConnector replaces the database connector. Tests use this to
// substitute a mock connection.
func WithConnector(connect func(ConnectionInfo) (*sql.DB, error)) Option {
	return func(p *Provider) {
		p.connect = connect
	}
}

// Provider caches snapshots per normalized reference. Concurrent requests
// for the same reference share one in-flight probe.
type Provider struct {
	timeout time.Duration
	extract ExtractConfig
	connect func(ConnectionInfo) (*sql.DB, error)

	mu    sync.RWMutex
	cache map[string]*querylint.Snapshot
	group singleflight.Group
}

func NewProvider(options ...Option) *Provider {
	p := &Provider{
		timeout: defaultProbeTimeout,
		connect: Connect,
		cache:   make(map[string]*querylint.Snapshot),
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// Snapshot resolves ref to a schema snapshot, probing at most once per
// normalized reference. Probe failures are reported as ErrSchemaUnavailable
// and are not cached, so the next call retries.
func (p *Provider) Snapshot(ctx context.Context, ref string) (*querylint.Snapshot, error) {
	info, err := ParseReference(ref)
	if err != nil {
		return nil, err
	}

	key := NormalizeReference(ref)

	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()

	if ok {
		return cached, nil
	}

	result, err, _ := p.group.Do(key, func() (any, error) {
		snapshot, err := p.probe(ctx, info)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.cache[key] = snapshot
		p.mu.Unlock()

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*querylint.Snapshot), nil
}

// Invalidate drops the cached snapshot for ref so the next request
// probes again.
func (p *Provider) Invalidate(ref string) {
	key := NormalizeReference(ref)

	p.mu.Lock()
	delete(p.cache, key)
	p.mu.Unlock()
}

// InvalidateAll drops every cached snapshot.
func (p *Provider) InvalidateAll() {
	p.mu.Lock()
	p.cache = make(map[string]*querylint.Snapshot)
	p.mu.Unlock()
}

func (p *Provider) probe(ctx context.Context, info ConnectionInfo) (*querylint.Snapshot, error) {
	if info.Type == "file" {
		snapshot, err := LoadSnapshot(info.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
		}

		return snapshot, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	db, err := p.connect(info)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
	}
	defer db.Close()

	extractor, err := NewExtractor(info.Type)
	if err != nil {
		return nil, err
	}

	dbInfo, err := extractor.DatabaseInfo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
	}

	tables, err := extractor.ExtractTables(ctx, db, p.extract)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, ErrNoTablesFound)
	}

	name := info.Database
	if name == "" {
		name = dbInfo.Name
	}

	snapshot, err := querylint.NewSnapshot(name, dbInfo, tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
	}

	return snapshot, nil
}
