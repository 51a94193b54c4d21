// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import "context"

// Well-known sequence counter keys.
const (
	SequenceUsers    = "users"
	SequenceProfiles = "profiles"
	SequenceJobs     = "jobs"
)

// SequenceAllocator issues globally unique, strictly increasing integer
// identifiers per named counter. Implementations must perform the
// read-increment-write as one atomic operation at the storage layer; a
// separate read followed by a write reintroduces the duplicate-ID race this
// component exists to prevent.
//
// A counter is created lazily on first allocation. Storage failure must
// propagate to the caller; returning a plausible-looking fallback value would
// silently violate the uniqueness invariant. Gaps left by aborted downstream
// saves are tolerated; duplicates are not.
type SequenceAllocator interface {
	// NextValue atomically increments the counter for key and returns the
	// new value.
	NextValue(ctx context.Context, key string) (int64, error)
}
