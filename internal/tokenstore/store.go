// ABOUTME: Key-value storage abstraction for persisted session credentials
// ABOUTME: Lets the session client run against memory, disk, or test fakes

package tokenstore

// Store is a synchronous string key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
