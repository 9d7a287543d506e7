package constants

// Request errors
const (
	ErrInvalidRequestBody = "Invalid request body"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrUnknownBrand       = "Unknown brand"
	ErrUnknownPane        = "Unknown pane"
	ErrForbiddenForRole   = "This action is not available for your role"
	ErrBrandOutOfScope    = "Your role cannot act on this brand"
	ErrInvalidStatus      = "Invalid status"
	ErrUnsupportedFile    = "Unsupported file type; use .csv, .xlsx or .xls"
	ErrEmptyUpload        = "Uploaded file has no mapping rows"
)

// Validation errors
const (
	ErrNoValidMappings   = "No valid mappings to save. Every row needs all three fields."
	ErrMergeNeedsTwo     = "At least 2 vendor IDs required for merge"
	ErrUnifiedNameNeeded = "unified_name is required"
	ErrVendorRulesRange  = "confidence_threshold must be between 0 and 100 and weights between 0 and 1"
)
