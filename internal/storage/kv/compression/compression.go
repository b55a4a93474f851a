// Package compression provides value compression for the kv backends.
package compression

// Compressor compresses and decompresses stored values.
type Compressor interface {
	// Name returns the name of the compressor.
	Name() string

	// Compress compresses data.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data.
	Decompress(data []byte) ([]byte, error)
}

// ForName returns the compressor registered under the given name.
// Unknown names fall back to no compression.
func ForName(name string) Compressor {
	switch name {
	case "lz4":
		return &LZ4Compressor{}
	default:
		return &NoCompressor{}
	}
}
