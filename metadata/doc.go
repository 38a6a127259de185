// Package metadata persists the gallery Index as a single JSON document.
//
// The whole document is read on every Load and rewritten on every Save.
// Save writes a temp file next to the document, syncs it and renames it into
// place, so a crash never leaves a truncated document behind.
//
// Load treats a missing, empty or unparsable document as an empty Index and
// logs the parse failure. Previously stored records are then invisible until
// the document is repaired or rebuilt from storage (gallery rebuild).
//
// # Usage
//
//	root, _ := os.OpenRoot("./uploads")
//	store := metadata.NewJSONStore(root, metadata.DefaultFileName)
//
//	idx, err := store.Load(ctx)
//	idx["spain"] = append(idx["spain"], record)
//	err = store.Save(ctx, idx)
package metadata
