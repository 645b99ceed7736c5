// Package errors provides the coded diagnostics printed by the filerouter CLI.
//
// Codes are grouped by stage:
//   - R1xx: configuration (filerouter.yaml, environment)
//   - R2xx: route files (naming conflicts, unloadable modules, scanning)
//   - R3xx: server view map (unreadable snapshots, dropped views)
//   - R4xx: CLI output and serving
//
// Warnings (R203, R302, R303) are reported but do not fail a run.
//
//	err := errors.New("R201").
//	    WithDetail(`"users/{id}.go" and "users/{name}.go" both resolve to users/:param`).
//	    WithSuggestion("Rename one of the files")
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR R201: Route naming conflict
//	//
//	//   "users/{id}.go" and "users/{name}.go" both resolve to users/:param
//	//
//	//   Hint: Rename one of the files
//	//
//	//   Learn more: https://filerouter.dev/docs/errors/R201
package errors
