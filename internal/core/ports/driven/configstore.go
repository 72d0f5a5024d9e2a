package driven

import "time"

// ConfigStore provides access to application configuration.
// Keys use dot notation for nested tables ("search.per_page").
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetDuration retrieves a duration value. Returns 0 when the key is unset
	// and an error when the value cannot be read as a duration.
	GetDuration(key string) (time.Duration, error)

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string

	// Dir returns the directory holding the configuration and default data.
	Dir() string
}
