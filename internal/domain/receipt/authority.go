package receipt

import "context"

// Authority resolves an opaque QR payload to the canonical record's current
// state. The authority alone decides between NOT_FOUND and TAMPERED; callers
// relay its classification without second-guessing it.
type Authority interface {
	Resolve(ctx context.Context, payload string) (*VerificationResult, error)
}
