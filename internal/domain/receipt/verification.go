package receipt

// VerificationStatus is the closed set of outcomes a QR verification can have.
type VerificationStatus string

const (
	VerificationValid     VerificationStatus = "VALID"     // Authentic and not voided
	VerificationCancelled VerificationStatus = "CANCELLED" // Authentic but voided
	VerificationNotFound  VerificationStatus = "NOT_FOUND" // Unknown to the authority
	VerificationTampered  VerificationStatus = "TAMPERED"  // Payload fails the authority's integrity check
)

// IsValid checks if the status is a valid VerificationStatus
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationValid, VerificationCancelled, VerificationNotFound, VerificationTampered:
		return true
	}
	return false
}

// String returns the string representation of VerificationStatus
func (s VerificationStatus) String() string {
	return string(s)
}

// VerificationResult is the outcome of resolving a QR payload against the
// verification authority. Receipt is populated only for VALID and CANCELLED.
type VerificationResult struct {
	Status  VerificationStatus `json:"status"`
	Message string             `json:"message"`
	Receipt *PrintableReceipt  `json:"receipt,omitempty"`
}
