// Package ir provides the core data model shared by every nucleus package.
//
// This package contains type definitions and their content-addressing rules
// only. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Addresses are content hashes: SHA-256 over canonical JSON with domain separation
//   - Canonical JSON forbids floats and nulls so addresses stay stable across encoders
//   - All JSON tags use snake_case
//   - Errors that cross the state store are values (*Error), compared structurally
package ir
