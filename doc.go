// Package registre provides the shared domain types for an ETL pipeline over
// the French public company registries. It is designed to be local-first and
// auditable: every extract lands in a single analytical database file that
// can be rebuilt from scratch out of the public sources.
//
// The core functionalities include:
//   - Record Types: The legal units, establishments, annual accounts and
//     legal announcements shared by the per-source extractor packages.
//   - SIREN Handling: Validation and extraction of the 9-digit company
//     identifier, including extraction from free-text RCS mentions.
//   - Monetary Values: Exact EUR amounts backed by decimals, parsed from the
//     fixed-width cent strings of the annual-accounts files.
//   - Configuration: The typed configuration shared by every command, loaded
//     from YAML with environment overrides.
//
// This package serves as the foundational logic for the `fms` command-line
// tool; the heavy lifting lives in the sirene, inpi and bodacc extractor
// packages and in the store package.
package registre
