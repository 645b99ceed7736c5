// Package config loads filerouter.yaml.
//
// Values are resolved from defaults, the YAML file, a .env file and
// FILEROUTER_* environment variables, then explicitly set CLI flags:
//
//	routes:
//	  dir: routes
//	  extensions: [".go"]
//	  layout_marker: $layout
//	  index_marker: $index
//	views:
//	  file: views.json
//	menu:
//	  locale: en-US
//	output:
//	  dir: generated
//	serve:
//	  addr: localhost:8085
//	log:
//	  filename: .filerouter.log
//	  level: info
//
// Nested keys map to variables with dots replaced by underscores, so
// routes.dir is FILEROUTER_ROUTES_DIR.
package config
