// Package storage persists stores in an embedded Badger database.
//
// Values are kept in their text form, produced and parsed by the codecs of
// the stored keys, so a saved store can be read back into any store whose
// definition declares the same keys. Each store occupies its own key range:
//
//	store\x00<store name>\x00<key name> -> encoded value
//
// Saving a store replaces its whole range in one transaction.
//
// With Config.Passphrase set, values under secret-looking key names (see
// logger.IsSensitiveKey) are sealed with XChaCha20-Poly1305 under a key
// derived by Argon2id. Salt and a check value live under meta\x00 keys,
// outside every store range. Sealing sits below the codecs, so Load returns
// the same text either way.
package storage
