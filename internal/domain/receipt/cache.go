package receipt

import "context"

// SessionReceiptStore caches issued receipts per operator session so a
// reprint never has to re-query the backend. It is a convenience cache,
// not a source of truth: values disappear when the session ends and
// reads never fail the caller.
type SessionReceiptStore interface {
	// Put stores the receipt under (sessionID, receipt.Folio). A later
	// Put for the same pair overwrites.
	Put(ctx context.Context, sessionID string, r *PrintableReceipt) error

	// Get returns the cached receipt and true on a hit. Malformed or
	// expired stored data is a miss, never an error.
	Get(ctx context.Context, sessionID, folio string) (*PrintableReceipt, bool)

	// Clear drops every receipt cached for the session.
	Clear(ctx context.Context, sessionID string) error

	// Close releases background resources. Safe to call multiple times.
	Close() error
}
