package domain

// FileType represents the allowed export file types for upload.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypeCSV  FileType = "csv"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeXLS:  "application/vnd.ms-excel",
	FileTypeCSV:  "text/csv",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLS,
	"csv":  FileTypeCSV,
}

// SourceType identifies which government filing export a row came from.
type SourceType string

const (
	SourceGSTR2A SourceType = "gstr2a"
	SourceGSTR2B SourceType = "gstr2b"
)

// ValidSourceTypes is the set of accepted source type values.
var ValidSourceTypes = map[SourceType]bool{
	SourceGSTR2A: true,
	SourceGSTR2B: true,
}

// Sibling returns the other filing source describing the same invoices.
func (s SourceType) Sibling() SourceType {
	if s == SourceGSTR2A {
		return SourceGSTR2B
	}
	return SourceGSTR2A
}

// ViewName addresses the canonical record set or one of its derived views.
type ViewName string

const (
	ViewCanonical     ViewName = "canonical"
	ViewReverseCharge ViewName = "reverse_charge"
	ViewMismatched    ViewName = "mismatched"
	ViewDisallow      ViewName = "disallow"
)

// ValidViews is the set of addressable views.
var ValidViews = map[ViewName]bool{
	ViewCanonical:     true,
	ViewReverseCharge: true,
	ViewMismatched:    true,
	ViewDisallow:      true,
}

// Action is the reviewer workflow decision for a row.
type Action string

const (
	ActionAccept  Action = "Accept"
	ActionReject  Action = "Reject"
	ActionPending Action = "Pending"
)

// ValidActions is the set of accepted workflow actions.
var ValidActions = map[Action]bool{
	ActionAccept:  true,
	ActionReject:  true,
	ActionPending: true,
}

// TaxMode says whether a slab's tax was applied as IGST or as a CGST+SGST split.
type TaxMode string

const (
	TaxModeIGST TaxMode = "igst"
	TaxModeCGST TaxMode = "cgst_sgst"
)

// ImportStatus represents the processing lifecycle of an uploaded export.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusQueued     ImportStatus = "queued"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusProcessed  ImportStatus = "processed"
	ImportStatusFailed     ImportStatus = "failed"
)

// Ledger DR/CR markers.
const (
	Debit  = "DR"
	Credit = "CR"
)

// ITC availability display values.
const (
	ITCYes = "Yes"
	ITCNo  = "No"
)
