// Package services implements the operator-facing layer of the license
// manager. Front ends (the command line tool and its interactive shell) talk
// only to this package; it coordinates the deriver, the customer store, the
// credential store and the exporter.
//
// # Error Propagation
//
// Errors returned here always carry one of the kinds in internal/errors:
//
//	- validation and authentication errors leave every store unchanged
//	- storage errors on write are surfaced; memory matches disk
//	- a storage error while loading records is logged and the session
//	  continues with an empty list (Start reports it)
//	- derivation errors are fatal for the operation
//
// # Components
//
//	LicenseService  issue, preview, verify, list, remove, export, passwords
//	Session         login state with throttling of failed attempts
//	HealthService   store inspection for the status command
//
// Dependencies are declared as small interfaces in ports.go so tests can
// substitute mocks.
package services
