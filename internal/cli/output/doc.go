// Package output renders schemas and stores for specs-opt.
//
// Every command result is formatted by a Formatter selected with --output:
// table (default), json, yaml or toml. Store values are shown in their
// encoded text form, with sensitive entries redacted.
package output
