package generator

// Config drives the synthetic data generator.
type Config struct {
	NumCustomers int
	Seed         int64
	// PDFForms controls whether application form PDFs are rendered for each
	// customer (the batch pipeline's input).
	PDFForms bool
	// InboxPayloads controls whether OCR-style JSON payloads are produced
	// for each customer (the inbox reader's input).
	InboxPayloads bool
}

// DefaultConfig returns baseline settings for a usable demo dataset.
func DefaultConfig() Config {
	return Config{
		NumCustomers:  5000,
		Seed:          42,
		PDFForms:      true,
		InboxPayloads: true,
	}
}
