package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Renderer Errors (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Render function missing",
		Detail:   "The component has neither a Render function, a setup function returning one, nor a Template.",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Template compile failed",
		Detail:   "The component's template could not be compiled, or no template compiler is registered.",
	},
	"R003": {
		Category: CategoryRuntime,
		Message:  "Invalid vnode type",
		Detail:   "A vnode type must be an element tag string, a *Component, Fragment or Text.",
	},

	// ============================================
	// Compiler Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryCompile,
		Message:  "Unterminated interpolation",
		Detail:   "An interpolation was opened with {{ but never closed with }}.",
	},
	"C002": {
		Category: CategoryCompile,
		Message:  "Missing closing tag",
	},
	"C003": {
		Category: CategoryCompile,
		Message:  "Malformed tag",
	},
	"C004": {
		Category: CategoryCompile,
		Message:  "Unsupported expression",
		Detail:   "Template expressions must be dotted property paths.",
	},

	// ============================================
	// Protocol Errors (P001-P099)
	// ============================================

	"P001": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
	},
	"P002": {
		Category: CategoryProtocol,
		Message:  "Unknown operation",
	},

	// ============================================
	// Live Session Errors (L001-L099)
	// ============================================

	"L001": {
		Category: CategoryRuntime,
		Message:  "Event handler failed",
		Detail:   "An event handler panicked; the session keeps running.",
	},
	"L002": {
		Category: CategoryRuntime,
		Message:  "Session mount failed",
	},

	// ============================================
	// Config and CLI Errors
	// ============================================

	"CFG001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"CLI001": {
		Category: CategoryCLI,
		Message:  "Invalid command input",
	},
	"CLI002": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
