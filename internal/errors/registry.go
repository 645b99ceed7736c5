package errors

import "sort"

// ErrorTemplate is the registered shape of a code.
type ErrorTemplate struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://filerouter.dev/docs/errors/"

var registry = map[string]ErrorTemplate{
	// Config (R1xx)

	"R101": {
		Category: CategoryConfig,
		Message:  "Config file could not be read",
		Detail:   "filerouter.yaml exists but could not be parsed. Check the YAML syntax and field names.",
		DocURL:   docBase + "R101",
	},
	"R102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong shape.",
		DocURL:   docBase + "R102",
	},
	"R103": {
		Category: CategoryConfig,
		Message:  "Environment file could not be loaded",
		Detail:   "The .env file named by --env-file could not be read.",
		DocURL:   docBase + "R103",
	},

	// Routes (R2xx)

	"R201": {
		Category: CategoryRoutes,
		Message:  "Route naming conflict",
		Detail:   "Two route files resolve to the same URL, or a catch-all segment is followed by more segments.",
		DocURL:   docBase + "R201",
	},
	"R202": {
		Category: CategoryRoutes,
		Message:  "Routes directory not found",
		Detail:   "The configured routes directory does not exist or is not a directory.",
		DocURL:   docBase + "R202",
	},
	"R203": {
		Category: CategoryRoutes,
		Severity: SeverityWarning,
		Message:  "Route module could not be loaded",
		Detail:   "The file is kept in the route tree without a component or config.",
		DocURL:   docBase + "R203",
	},
	"R204": {
		Category: CategoryRoutes,
		Message:  "Route scan failed",
		Detail:   "Walking the routes directory failed.",
		DocURL:   docBase + "R204",
	},
	"R205": {
		Category: CategoryRoutes,
		Message:  "Invalid route file name",
		Detail:   "A file or directory name is not a valid route segment.",
		DocURL:   docBase + "R205",
	},

	// View map (R3xx)

	"R301": {
		Category: CategoryViewMap,
		Message:  "View map could not be loaded",
		Detail:   "The server view map snapshot could not be read or decoded.",
		DocURL:   docBase + "R301",
	},
	"R302": {
		Category: CategoryViewMap,
		Severity: SeverityWarning,
		Message:  "Server view dropped",
		Detail:   "A server view path is malformed and was left out of the merged tree.",
		DocURL:   docBase + "R302",
	},
	"R303": {
		Category: CategoryViewMap,
		Severity: SeverityWarning,
		Message:  "Duplicate route",
		Detail:   "More than one entry resolved to the same route; the first one wins.",
		DocURL:   docBase + "R303",
	},

	// CLI (R4xx)

	"R401": {
		Category: CategoryCLI,
		Message:  "Output could not be written",
		DocURL:   docBase + "R401",
	},
	"R402": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The routes API server stopped with an error.",
		DocURL:   docBase + "R402",
	},
}

// GetAllCodes returns every registered code in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
