// Package linkage resolves bestseller-feed records against the ratings
// catalog when no shared identifier exists.
//
// Matching runs in two stages. Stage 1 blocks the catalog down to rows whose
// author field contains the source author's surname (or a short prefix of
// it) and scores titles with an order-insensitive token-sort ratio; the
// author filter already carries most of the precision, so a threshold of 85
// recovers reordered and retitled editions. Records that stage 1 cannot
// place fall through to stage 2, which scores against every rated catalog
// row with a weighted composite ratio and a stricter threshold of 94 to
// offset the missing author evidence.
//
// Both stages normalize titles identically (subtitle stripped, case folded)
// before scoring, pick the single best-scoring candidate with first-seen
// tie-break, and tag accepted links with their stage of origin. The engine
// aborts on any catalog query error; per-record misses are expected
// outcomes and never abort a run.
package linkage
