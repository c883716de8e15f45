// Package catalog owns the SQLite database behind the linkage pipeline:
// the ratings catalog (one row per ISBN-13, deduplicated at load time),
// the bestseller source records awaiting resolution, and the persisted
// links between the two.
//
// The store exposes the two candidate query modes the matching engine
// consumes (author-blocked with a row cap, and the full rated catalog) and
// the insert-or-ignore link sink that makes repeated runs idempotent: a
// source ISBN-13 that already has a link is never overwritten or
// duplicated.
package catalog
