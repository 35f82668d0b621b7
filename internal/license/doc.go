// Package license implements access code derivation for the license manager.
//
// An access code is a pure function of a customer's hardware identifier and
// a secret salt owned by the Deriver:
//
//	h1 := SHA512(hardwareID + salt)
//	h2 := MD5(h1)
//	h3 := SHA256(h2 + hardwareID)
//	code := first three 4-character groups of h3, uppercased, joined by "-"
//
// Codes already handed out to customers depend on this chain, so it must stay
// bit-for-bit stable. The salt is injected at construction so tests can use
// fixtures and installations can rotate it deliberately.
//
// # Usage
//
//	deriver, err := license.NewDeriver(license.DefaultSalt)
//	if err != nil {
//		return err
//	}
//	code, err := deriver.Derive("1A2B3C4D5E6F7890") // "8527-26A7-5AC5"
package license
