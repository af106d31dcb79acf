package internal

import "errors"

// Program is the scouting division a receipt belongs to.
type Program string

const (
	ProgramScoutsBSA Program = "Scouts BSA"
	ProgramCubScouts Program = "Cub Scouts"
	ProgramVenturing Program = "Venturing"
	ProgramSeaScouts Program = "Sea Scouts"
	ProgramExploring Program = "Exploring"
)

// Price categories the parser accumulates into. The route sheet template
// additionally carries a Unit Charter cell, which no receipt line ever
// populates; it only exists in the mapper's cell table.
const (
	PriceYouthRegistration      = "Youth Registration"
	PriceYouthSLSubscription    = "Youth SL Subscription"
	PriceYouthTransfer          = "Youth Transfer"
	PriceAdultRegistration      = "Adult Registration"
	PriceMultiplePositionChange = "Multiple/Position Change"
	PriceAdultTransfer          = "Adult Transfer"
	PriceAdultSLSubscription    = "Adult SL Subscription"
	PriceYouthExploring         = "Youth Exploring"
	PriceAdultExploring         = "Adult Exploring"
	PriceProgramFee             = "Program Fee"
)

// PriceCategories lists every accumulated category in template row order.
func PriceCategories() []string {
	return []string{
		PriceYouthRegistration,
		PriceYouthSLSubscription,
		PriceYouthTransfer,
		PriceAdultRegistration,
		PriceMultiplePositionChange,
		PriceAdultTransfer,
		PriceAdultSLSubscription,
		PriceYouthExploring,
		PriceAdultExploring,
		PriceProgramFee,
	}
}

// NewPriceMap returns a price map with every category present at zero.
func NewPriceMap() map[string]int {
	out := make(map[string]int, 10)
	for _, c := range PriceCategories() {
		out[c] = 0
	}
	return out
}

// Term is fixed for every registration receipt.
const Term12Months = "12 months"

// PartialRecord is the parser's output: whatever fields the OCR text yielded.
// Absent fields are nil; Prices always carries every category.
type PartialRecord struct {
	DistrictName    *string
	DistrictNumber  *int
	LocalUnitNumber *string
	Program         *Program
	Prices          map[string]int
}

// Record is the assembled extraction result for one receipt document.
// Dates are calendar dates in YYYY-MM-DD form. A Record is never mutated
// after assembly; the mapper only reads it.
type Record struct {
	CouncilNumber   string         `json:"council_number"`
	DistrictName    *string        `json:"district_name,omitempty"`
	DistrictNumber  *int           `json:"district_number,omitempty"`
	LocalUnitNumber *string        `json:"local_unit_number,omitempty"`
	Program         *Program       `json:"program,omitempty"`
	EffectiveDate   string         `json:"effective_date"`
	Term            string         `json:"term"`
	ExpirationDate  string         `json:"expiration_date"`
	Prices          map[string]int `json:"prices"`
}

// ReceiptRow is a stored receipt document and its processing outcome.
type ReceiptRow struct {
	ID           int
	Path         string
	Hash         string
	Status       string
	RawText      *string
	RecordJSON   *string
	ArtifactPath *string
	ErrorText    *string
}

// DocumentResult is the per-document outcome of a batch run. Exactly one of
// Record or Err is set; ArtifactPath is set only when the template was applied.
type DocumentResult struct {
	Path         string
	Record       *Record
	ArtifactPath string
	Err          error
}

// Error kinds for the stages that can fail. Parsing never fails; it degrades
// to a partial Record.
var (
	ErrLoad             = errors.New("input image cannot be decoded")
	ErrConversion       = errors.New("paginated input cannot be converted")
	ErrOCR              = errors.New("ocr engine failed")
	ErrTemplateNotFound = errors.New("route sheet template not found")
	ErrTemplateWrite    = errors.New("route sheet cannot be written")
)
