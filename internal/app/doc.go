// Package app assembles the license manager for one process run.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, LICMGR_* environment)
//	2. Resolve and create the data, logs and exports directories
//	3. Open the daily JSON log file
//	4. Set up telemetry (no-op unless enabled)
//	5. Build the deriver, stores, exporter and services
//
// # Usage
//
//	application, err := app.New(app.Options{ConfigFile: path})
//	if err != nil {
//	    return err
//	}
//	defer application.Close(ctx)
//
//	report, err := application.License.Start(ctx)
package app
