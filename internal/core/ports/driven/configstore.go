package driven

// ConfigStore holds flat, dot-notation settings such as "invoice.tax_rate".
// Typed getters return the zero value when a key is missing or holds a
// different type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts any integer width the backing format decodes to.
	GetInt(key string) int

	// GetFloat converts integers to float64.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set stores a value. File-backed stores write it through immediately.
	Set(key string, value any) error
}
