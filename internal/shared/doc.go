// Package shared holds code used across licmgr packages that belongs to no
// single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - a slog handler that captures records for assertions (NewTestLogger,
//     AssertLogContains, AssertNoErrors, ContainsAttr)
//   - customer fixtures with known hardware id to access code pairs
//     (KnownCodes, SampleCustomers)
//   - helpers that write customers.json files, valid or corrupt, into a
//     test directory (WriteCustomersFile, WriteRaw)
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := filepath.Join(t.TempDir(), "customers.json")
//	    testutil.WriteCustomersFile(t, path, testutil.SampleCustomers())
//	    // ...
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
