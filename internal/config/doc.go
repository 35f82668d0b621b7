// Package config loads the license manager configuration and resolves its
// file locations.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. a YAML file: the --config flag, else licmgr.yaml, configs/licmgr.yaml
//	   or licmgr.yaml next to the executable
//	3. environment variables prefixed LICMGR_
//
// # Environment Variables
//
// Each field maps to LICMGR_<SECTION>_<FIELD>:
//
//	LICMGR_LOGGING_LEVEL=debug
//	LICMGR_PATHS_BASE_DIR=/srv/licmgr
//	LICMGR_CREDENTIALS_SCHEME=scrypt
//	LICMGR_RECORDS_CALENDAR=gregorian
//	LICMGR_EXPORT_LANGUAGE=fa
//	LICMGR_TELEMETRY_METRICS_ENABLED=true
//
// # Paths
//
// Config.ResolvePaths produces Paths, the absolute location of every
// artifact. Relative entries resolve against paths.base_dir, which defaults
// to the executable directory so the tool behaves the same wherever it is
// launched from.
package config
