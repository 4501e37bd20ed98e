package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

// sessionEntry holds one session's cached receipts with its idle deadline
type sessionEntry struct {
	receipts  map[string][]byte // folio -> serialized snapshot
	expiresAt time.Time
}

// InMemoryReceiptStore implements receipt.SessionReceiptStore using an
// in-memory map. This is suitable for single-instance deployments and
// testing.
type InMemoryReceiptStore struct {
	mu        sync.RWMutex
	sessions  map[string]*sessionEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryReceiptStore creates a new in-memory session receipt store.
// Sessions idle for longer than ttl are swept by a background goroutine.
func NewInMemoryReceiptStore(ttl time.Duration) *InMemoryReceiptStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	store := &InMemoryReceiptStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Put stores the receipt under the session, overwriting any previous value
// for the same folio. Each Put refreshes the session's idle deadline.
func (s *InMemoryReceiptStore) Put(ctx context.Context, sessionID string, r *receipt.PrintableReceipt) error {
	data, err := json.Marshal(receipt.Snapshot(r))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		sess = &sessionEntry{receipts: make(map[string][]byte)}
		s.sessions[sessionID] = sess
	}
	sess.receipts[r.Folio] = data
	sess.expiresAt = time.Now().Add(s.ttl)
	return nil
}

// Get returns the cached receipt for (sessionID, folio). Malformed stored
// data is a miss, not an error.
func (s *InMemoryReceiptStore) Get(ctx context.Context, sessionID, folio string) (*receipt.PrintableReceipt, bool) {
	s.mu.RLock()
	sess, exists := s.sessions[sessionID]
	if !exists || time.Now().After(sess.expiresAt) {
		s.mu.RUnlock()
		return nil, false
	}
	data, ok := sess.receipts[folio]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	var snap receipt.CachedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	return receipt.FromSnapshot(snap), true
}

// Clear drops every receipt cached for the session
func (s *InMemoryReceiptStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryReceiptStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes idle sessions
func (s *InMemoryReceiptStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes sessions whose idle deadline has passed
func (s *InMemoryReceiptStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for sessionID, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, sessionID)
		}
	}
}

// Size returns the number of live sessions (for testing/monitoring)
func (s *InMemoryReceiptStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Ensure InMemoryReceiptStore implements SessionReceiptStore
var _ receipt.SessionReceiptStore = (*InMemoryReceiptStore)(nil)
