package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Positioning (F001-F009)
	// ============================================

	"F001": {
		Category: CategoryMount,
		Message:  "Floating pair not mounted",
		Detail:   "The reference or floating element is missing or disconnected, so positioning was skipped.",
		DocURL:   "https://floatkit.dev/docs/errors/F001",
	},
	"F002": {
		Category: CategoryRef,
		Message:  "Element reference could not be assigned",
		Detail:   "A caller-supplied reference rejected the element. The internal reference is still set.",
		DocURL:   "https://floatkit.dev/docs/errors/F002",
	},
	"F003": {
		Category: CategoryMiddleware,
		Message:  "Unsupported middleware",
		Detail:   "Only offset, flip, shift, size, arrow and hide are recognized. Unknown steps are dropped.",
		DocURL:   "https://floatkit.dev/docs/errors/F003",
	},
	"F004": {
		Category: CategoryMiddleware,
		Message:  "Invalid middleware options",
		DocURL:   "https://floatkit.dev/docs/errors/F004",
	},

	// ============================================
	// Options (F010-F019)
	// ============================================

	"F010": {
		Category: CategoryPlacement,
		Message:  "Invalid placement",
		Detail:   "Placements are top, right, bottom or left, optionally suffixed with -start or -end.",
		DocURL:   "https://floatkit.dev/docs/errors/F010",
	},

	// ============================================
	// Configuration (F020-F029)
	// ============================================

	"F020": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration",
		DocURL:   "https://floatkit.dev/docs/errors/F020",
	},
	"F021": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		DocURL:   "https://floatkit.dev/docs/errors/F021",
	},
	"F022": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   "https://floatkit.dev/docs/errors/F022",
	},

	// ============================================
	// Layout sync protocol (F030-F039)
	// ============================================

	"F030": {
		Category: CategoryProtocol,
		Message:  "Malformed message",
		DocURL:   "https://floatkit.dev/docs/errors/F030",
	},
	"F031": {
		Category: CategoryProtocol,
		Message:  "Unknown tooltip",
		DocURL:   "https://floatkit.dev/docs/errors/F031",
	},
	"F032": {
		Category: CategoryProtocol,
		Message:  "Layout hierarchy cycle",
		Detail:   "A node cannot be placed under itself or one of its descendants. The node keeps its previous parent.",
		DocURL:   "https://floatkit.dev/docs/errors/F032",
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
