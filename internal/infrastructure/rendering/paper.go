package rendering

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4         PaperSize = "A4"           // 210mm x 297mm
	PaperSizeLetter     PaperSize = "LETTER"       // 216mm x 279mm
	PaperSizeReceipt80M PaperSize = "RECEIPT_80MM" // 80mm thermal receipt
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeLetter, PaperSizeReceipt80M:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
// For receipt paper, width is the paper width and height is variable
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeLetter:
		return 216, 279
	case PaperSizeReceipt80M:
		return 80, 0 // Height is variable for receipt paper
	default:
		return 216, 279 // Default to Letter
	}
}

// IsReceipt returns true if this is a receipt paper size
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt80M
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// Margins holds page margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultReportMargins returns the margins used for cash-cut reports
func DefaultReportMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

// DefaultReceiptMargins returns the margins used for receipt documents
func DefaultReceiptMargins() Margins {
	return Margins{Top: 5, Right: 4, Bottom: 5, Left: 4}
}
