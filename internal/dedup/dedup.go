package dedup

import (
	"context"
	"errors"
	"strings"
	"time"

	"school-job-scout/internal/scraper"

	"go.uber.org/zap"
)

// ErrLocked means another run holds the state lock.
var ErrLocked = errors.New("run state is locked by another process")

// Key is the cross-run identity of a posting. Portal URLs carry session ids
// and search parameters; district and title do not.
func Key(job scraper.Job) string {
	return strings.TrimSpace(job.District) + "|" + strings.TrimSpace(job.Title)
}

// KeySet is a set of identity keys.
type KeySet map[string]struct{}

func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Diff returns the jobs whose key is not in previous, in the order of current,
// and every distinct key of current in first-seen order.
func Diff(current []scraper.Job, previous KeySet) (newJobs []scraper.Job, keys []string) {
	seen := make(KeySet, len(current))
	for _, job := range current {
		k := Key(job)
		if !seen.Has(k) {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if !previous.Has(k) {
			newJobs = append(newJobs, job)
		}
	}
	return newJobs, keys
}

// Snapshot is the persisted run state.
type Snapshot struct {
	JobIDs   []string `json:"job_ids"`
	LastRun  string   `json:"last_run"`
	JobCount int      `json:"job_count"`
}

// Store loads and replaces the run state.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// Locker is implemented by stores that can keep a second run out.
type Locker interface {
	Lock() (unlock func() error, err error)
}

// Tracker reads previous keys and writes the current ones through a Store.
type Tracker struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger.Named("state"), now: time.Now}
}

// LoadPreviousKeys never fails: missing or unreadable state is an empty set.
func (t *Tracker) LoadPreviousKeys(ctx context.Context) KeySet {
	snap, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("⚠️ previous run state unreadable, starting fresh", zap.Error(err))
		return KeySet{}
	}
	t.logger.Info("📋 loaded previous run state",
		zap.Int("keys", len(snap.JobIDs)), zap.String("last_run", snap.LastRun))
	return NewKeySet(snap.JobIDs...)
}

// PersistCurrentKeys replaces the stored state with keys. jobCount is the
// number of jobs the keys came from, which can exceed len(keys) when two
// postings share an identity. Call it once per run.
func (t *Tracker) PersistCurrentKeys(ctx context.Context, keys []string, jobCount int) error {
	if keys == nil {
		keys = []string{}
	}
	snap := Snapshot{
		JobIDs:   keys,
		LastRun:  t.now().Format(time.RFC3339),
		JobCount: jobCount,
	}
	if err := t.store.Save(ctx, snap); err != nil {
		return err
	}
	t.logger.Info("💾 saved run state", zap.Int("keys", len(keys)), zap.Int("jobs", jobCount))
	return nil
}

// Lock takes the store's lock when it has one.
func (t *Tracker) Lock() (func() error, error) {
	if l, ok := t.store.(Locker); ok {
		return l.Lock()
	}
	return func() error { return nil }, nil
}
