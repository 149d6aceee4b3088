// Package text holds the deterministic text normalization used to build lot records.
//
// All helpers are pure functions. They never touch the network or global state, so the
// extractor and the tests can call them freely.
//
// # Bounded fields
//
// TruncateWithOverflow cuts a text at a fixed character limit. The kept part ends in an
// ellipsis marker and the suffix starting at the cut is returned separately, so the
// original text can be rebuilt from the prefix (without the marker) and the overflow.
//
// # Sentences
//
// CapitalizeSentences upper-cases the first letter of every period delimited sentence.
// Ellipses are kept as literal periods and a period between two digits ("12.5") is not a
// sentence boundary.
//
// # Prices and currencies
//
// NormalizePrice parses a scraped amount into a two decimal string. A zero amount becomes
// "1.00" because downstream catalogs reject zero priced items. NormalizeCurrency maps
// site specific currency codes to ISO codes.
//
// # Broken encodings
//
// The source site sometimes serves words with U+FFFD in place of accented letters.
// RepairMojibake fixes the known words and FindMojibake reports the ones left over.
package text
