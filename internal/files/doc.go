// Package files provides the file system primitives the license manager
// persists through.
//
// Manager writes every artifact atomically: data goes to a temporary file in
// the target directory, is synced, then renamed over the destination, so a
// crash leaves either the old or the new content on disk. Unreadable stores
// can be moved aside with Quarantine instead of being overwritten.
//
// Discovery lists previously written export files.
//
// Example usage:
//
//	manager := files.NewManager(paths.BaseDir, logger)
//	if err := manager.WriteAtomic("license_data/customers.json", data, 0o644); err != nil {
//	    return err
//	}
//
//	exports, err := files.NewDiscovery(paths.ExportsDir).FindExports()
package files
