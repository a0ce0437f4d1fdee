// Package altnames reduces the GeoNames alternate-names table to one canonical
// Simplified Chinese name per place.
//
// The raw table is streamed line by line. Each row is projected onto
// AlternateName and passed through three predicates (provenance, language
// code, script). Survivors are ranked by language precedence, sorted, and
// deduplicated so that one row per geoname id remains. The chosen names are
// converted to Simplified Chinese and written as a two-column parquet file.
//
// Every step is a standalone function over the fixed record types so it can
// be tested in isolation; Transformer only sequences them and reports Stats.
package altnames
