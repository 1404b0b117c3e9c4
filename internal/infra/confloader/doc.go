// Package confloader fills datastore stores from configuration sources.
//
// Sources are read with koanf, lowest priority first:
//
//  1. Key defaults (from the store definition)
//  2. Configuration file (YAML)
//  3. Environment variables (SPECS_ prefix by default)
//  4. Explicit overrides (LoadMap, e.g. --set flags)
//
// Every value is handed to the key's codec as text, so a definition built
// from a schema can be filled from any source. A Reloader keeps a store
// current while a Watcher reports changes to its file.
package confloader
