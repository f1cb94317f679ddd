// Package envconfig turns decrypted KEY=VALUE text into a read-only runtime configuration.
//
// Parse produces an ordered Mapping. A Store holds the active Mapping and
// replaces it atomically on Load:
//
//	store := envconfig.NewStore()
//	store.Load(envconfig.Parse(plaintext))
//	port := store.Get("DB_PORT", "5432")
//
// Stores are plain values passed to whoever needs them; there is no global.
package envconfig
