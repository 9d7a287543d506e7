package constants

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeText = "Content-Type"
)

// Headers
const (
	HeaderContentDisposition        = "Content-Disposition"
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
	FormatAttachment                = "attachment; filename=\"%s\""
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	DateFormatISO  = "2006-01-02T15:04:05"
)

// Cookies
const (
	SessionCookie = "tmhna_session"
)

// Empty states
const (
	MsgNoRawData             = "No raw data available"
	MsgNoResults             = "No results found"
	MsgNoHistory             = "No submission history found."
	MsgNoSubmissions         = "No submissions found."
	MsgNoVariances           = "No variances found. All accounts and cost centers are mapped."
	MsgNoBrandVariances      = "No variances found for your brand. All accounts and cost centers are mapped."
	FormatNoBrandApproved    = "No approved data available for %s."
	MsgNoUnified             = "No approved data available yet. Unified View shows data from approved submissions."
	MsgNoQualityIssues       = "No data quality issues found. Data is ready for submission."
	MsgNoAccountMappings     = "No account mappings found. Click \"Add Account Mapping\" to create one."
	MsgNoCostCenterMappings  = "No cost center mappings found. Click \"Add Cost Center Mapping\" to create one."
	MsgNoVendorData          = "No vendor data available"
	MsgNoChartData           = "No data available"
	MsgNoPreviewRecords      = "No new records available for submission"
	MsgNoSubmittableRows     = "No data available for submission (all rows are unmapped)"
	MsgNoSubmissionRows      = "No rows found for this submission."
	MsgNoMappingRequests     = "No mapping requests from brand controllers."
	MsgNoDownloadData        = "No data available to download."
	MsgUnauthorized          = "Unauthorized"
	FormatErrorLoading       = "Error loading %s"
	FormatBlockingSubmit     = "Cannot submit: %d unmapped account(s) or cost center(s) detected."
	MsgRequestMappingsButton = "Request Corporate to Add Mappings"
)

// Prompts and action outcomes
const (
	FormatConfirmSubmit        = "Submit %s financial data to corporate?"
	FormatConfirmStatus        = "Mark submission %s as %s?"
	MsgConfirmSaveAccounts     = "Save all account mappings? This replaces the existing table."
	MsgConfirmSaveCostCenters  = "Save all cost center mappings? This replaces the existing table."
	MsgConfirmVendorRules      = "Save vendor matching rules?"
	FormatConfirmMerge         = "Merge %d vendors into \"%s\"?"
	MsgConfirmReset            = "Reset Financial Integration? All submission history will be deleted."
	FormatBlockingPreflight    = "Cannot submit: %d unmapped account(s) or cost center(s) must be resolved first. Please update mappings in Mapping Governance."
	FormatSubmitted            = "%s data submitted to corporate."
	FormatStatusUpdated        = "Submission %s."
	MsgMappingsSaved           = "Mappings saved."
	MsgVendorRulesSaved        = "Vendor rules saved."
	MsgVendorsMerged           = "Vendors merged."
	MsgStateReset              = "Financial Integration reset."
	FormatMappingRequestSent   = "Mapping request sent to Corporate for %s."
	FormatMappingRequestRepeat = "A mapping request for %s was already sent this session."
)
