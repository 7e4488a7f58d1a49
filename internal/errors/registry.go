package errors

import "net/http"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	Status   int
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (Q001-Q009)
	// ============================================

	"Q001": {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
		Detail:   "The configuration file could not be read or parsed.",
		Status:   http.StatusInternalServerError,
	},
	"Q002": {
		Category: CategoryConfig,
		Message:  "Invalid sort configuration",
		Detail:   "Sort columns must be non-empty and unique.",
		Status:   http.StatusInternalServerError,
	},
	"Q003": {
		Category: CategoryConfig,
		Message:  "Unknown filter validator",
		Detail:   "Filter validators must be one of int, float, bool, loose-number, list, string, oneof=<values> or tag=<validator tag>.",
		Status:   http.StatusInternalServerError,
	},

	// ============================================
	// Query Errors (Q010-Q019)
	// ============================================

	"Q010": {
		Category: CategoryQuery,
		Message:  "Malformed query string",
		Detail:   "The query string contains an invalid percent-encoded sequence.",
		Status:   http.StatusBadRequest,
	},
	"Q011": {
		Category: CategoryQuery,
		Message:  "Invalid page number",
		Detail:   "Page and per-page values must be non-negative integers.",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Request Errors (Q020-Q029)
	// ============================================

	"Q020": {
		Category: CategoryRequest,
		Message:  "Malformed request body",
		Detail:   "The request body must be a JSON object.",
		Status:   http.StatusBadRequest,
	},
	"Q021": {
		Category: CategoryProtocol,
		Message:  "Unknown command",
		Detail:   "The session does not understand this command.",
		Status:   http.StatusBadRequest,
	},
	"Q022": {
		Category: CategoryRequest,
		Message:  "Sort column not found",
		Detail:   "The sort column is not part of the configured sort list.",
		Status:   http.StatusNotFound,
	},
	"Q023": {
		Category: CategoryRequest,
		Message:  "Invalid direction",
		Detail:   "Sort directions are asc or desc.",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Protocol Errors (Q030-Q039)
	// ============================================

	"Q030": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The connection could not be upgraded to a WebSocket.",
		Status:   http.StatusBadRequest,
	},
	"Q031": {
		Category: CategoryProtocol,
		Message:  "Malformed message",
		Detail:   "WebSocket messages must be JSON objects with an op field.",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// CLI Errors (Q040-Q049)
	// ============================================

	"Q040": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag could not be parsed.",
		Status:   http.StatusBadRequest,
	},
	"Q041": {
		Category: CategoryCLI,
		Message:  "Unknown output format",
		Detail:   "Output formats are text, json and yaml.",
		Status:   http.StatusBadRequest,
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
