package journal

// Config controls the exchange journal.
type Config struct {
	// Path is the SQLite file. Empty disables journaling.
	Path string `yaml:"path"`

	// MaxBodyBytes truncates stored bodies. Zero stores them whole.
	MaxBodyBytes int `yaml:"max_body_bytes" validate:"gte=0"`
}
