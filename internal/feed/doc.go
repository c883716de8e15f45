// Package feed ingests weekly bestseller-overview snapshots: fetching the
// published overview for a given Monday, persisting the raw JSON payload,
// and extracting the source records the linkage pipeline resolves.
package feed
