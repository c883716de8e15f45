// Command shelflink links bestseller feed entries to a reader-ratings
// catalog: fetching weekly snapshots, bulk-loading the catalog, running the
// two-stage fuzzy linkage, and reporting data sufficiency.
package main
