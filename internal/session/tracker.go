package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/storage"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// KeyPrefix namespaces persisted history in the store.
const KeyPrefix = "ltx-action-history-"

// cursorSuffix names the key holding the history cursor next to the log.
const cursorSuffix = ".cursor"

const (
	// SaveMaxRetries is the number of retries after a failed write.
	SaveMaxRetries = 3
	// SaveInitialInterval is the first retry delay.
	SaveInitialInterval = 50 * time.Millisecond
	// SaveMaxInterval caps the delay between retries.
	SaveMaxInterval = 500 * time.Millisecond
)

// Tracker persists one session's history log. Every failure is logged
// and swallowed: a session that cannot be saved keeps working in memory.
type Tracker struct {
	store      storage.Store
	sessionID  string
	newBackOff func(ctx context.Context) backoff.BackOff
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithBackOff overrides the retry policy used by Save.
func WithBackOff(fn func(ctx context.Context) backoff.BackOff) TrackerOption {
	return func(t *Tracker) { t.newBackOff = fn }
}

// ValidateID checks every key a tracker derives from sessionID.
func ValidateID(sessionID string) error {
	for _, key := range []string{KeyPrefix + sessionID, KeyPrefix + sessionID + cursorSuffix} {
		if err := storage.ValidateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// NewTracker creates a tracker for sessionID over store.
func NewTracker(store storage.Store, sessionID string, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:      store,
		sessionID:  sessionID,
		newBackOff: newSaveBackoff,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// newSaveBackoff creates the default exponential backoff for writes.
func newSaveBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = SaveInitialInterval
	b.MaxInterval = SaveMaxInterval
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, SaveMaxRetries), ctx)
}

// SessionID returns the tracked session identifier.
func (t *Tracker) SessionID() string { return t.sessionID }

// Key returns the store key for this session.
func (t *Tracker) Key() string { return KeyPrefix + t.sessionID }

// Save writes entries under the session key and reports whether it succeeded.
func (t *Tracker) Save(ctx context.Context, entries []types.HistoryEntry) bool {
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to encode session history")
		return false
	}
	if err := t.write(ctx, t.Key(), data); err != nil {
		logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to save session history")
		return false
	}
	return true
}

// SaveCursor writes the history cursor so that a later Restore lands on
// the same entry.
func (t *Tracker) SaveCursor(ctx context.Context, index int) bool {
	if err := t.write(ctx, t.Key()+cursorSuffix, []byte(strconv.Itoa(index))); err != nil {
		logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to save history cursor")
		return false
	}
	return true
}

// LoadCursor reads the saved history cursor.
func (t *Tracker) LoadCursor(ctx context.Context) (int, bool) {
	data, err := t.store.Get(ctx, t.Key()+cursorSuffix)
	if err != nil {
		return 0, false
	}
	index, err := strconv.Atoi(string(data))
	if err != nil {
		logging.Debug().Err(err).Str("session", t.sessionID).Msg("ignoring malformed history cursor")
		return 0, false
	}
	return index, true
}

// write stores data under key, retrying transient failures.
func (t *Tracker) write(ctx context.Context, key string, data []byte) error {
	op := func() error {
		err := t.store.Set(ctx, key, data)
		if errors.Is(err, storage.ErrInvalidKey) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logging.Debug().Err(err).Str("key", key).Dur("retryIn", wait).Msg("session save failed, retrying")
	}

	return backoff.RetryNotify(op, t.newBackOff(ctx), notify)
}

// Load reads the session's entries. A missing key, an unreadable store or
// an undecodable payload all yield an empty log.
func (t *Tracker) Load(ctx context.Context) []types.HistoryEntry {
	data, err := t.store.Get(ctx, t.Key())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to load session history")
		}
		return []types.HistoryEntry{}
	}

	var entries []types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to decode session history")
		return []types.HistoryEntry{}
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	return entries
}

// Clear removes the session key and its cursor.
func (t *Tracker) Clear(ctx context.Context) {
	if err := t.store.Delete(ctx, t.Key()); err != nil {
		logging.Warn().Err(err).Str("session", t.sessionID).Msg("failed to clear session history")
	}
	if err := t.store.Delete(ctx, t.Key()+cursorSuffix); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Debug().Err(err).Str("session", t.sessionID).Msg("failed to clear history cursor")
	}
}
