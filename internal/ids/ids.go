// Package ids generates the ULID identifiers used across all collections.
// ULIDs sort lexicographically by creation time, which keeps newest-first
// queries cheap.
package ids

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID string. Safe for concurrent use.
func New() string {
	return ulid.Make().String()
}
