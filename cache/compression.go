package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Codec compresses and decompresses stored payloads.
//
// Contract:
// - Decompress(Compress(p)) must equal p bit for bit.
// - Concurrency: implementations must be safe for concurrent use.
type Codec interface {
	// Name identifies the codec, e.g. "gzip".
	Name() string

	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// GzipCodec compresses payloads with gzip.
type GzipCodec struct {
	level int
}

// NewGzipCodec creates a gzip codec. Level follows compress/gzip semantics;
// out-of-range levels are rejected at construction.
func NewGzipCodec(level int) (*GzipCodec, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, fmt.Errorf("%w: gzip level %d out of range", ErrInvalidConfig, level)
	}
	return &GzipCodec{level: level}, nil
}

// Name returns "gzip".
func (c *GzipCodec) Name() string { return "gzip" }

// Compress gzips the payload.
func (c *GzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("cache: gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("cache: gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cache: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func (c *GzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip reader: %v", ErrEntryCorrupted, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip read: %v", ErrEntryCorrupted, err)
	}
	return out, nil
}

// NoopCodec stores payloads unchanged.
type NoopCodec struct{}

// NewNoopCodec creates a codec that performs no compression.
func NewNoopCodec() *NoopCodec { return &NoopCodec{} }

// Name returns "none".
func (c *NoopCodec) Name() string { return "none" }

// Compress returns the data unchanged.
func (c *NoopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns the data unchanged.
func (c *NoopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

// CompressionPolicy decides whether a serialized value is worth compressing.
type CompressionPolicy struct {
	// MinSize is the serialized-size threshold in bytes below which values
	// are stored uncompressed. Zero disables compression entirely.
	MinSize int
}

// ShouldCompress reports whether a payload of the given size crosses the
// threshold.
func (p CompressionPolicy) ShouldCompress(size int) bool {
	return p.MinSize > 0 && size > p.MinSize
}

// Encode applies the policy to a serialized payload. It returns the stored
// form and whether it is compressed. A failing or unprofitable compression
// degrades to the uncompressed payload with a nil error: compression
// problems never fail a put.
func (p CompressionPolicy) Encode(codec Codec, data []byte) (stored []byte, compressed bool, err error) {
	if codec == nil || !p.ShouldCompress(len(data)) {
		return data, false, nil
	}

	out, cerr := codec.Compress(data)
	if cerr != nil {
		return data, false, cerr
	}
	if len(out) >= len(data) {
		// Incompressible payload. Keep the original.
		return data, false, nil
	}
	return out, true, nil
}

// Decode reverses Encode for a stored entry payload.
func Decode(codec Codec, data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	if codec == nil {
		return nil, fmt.Errorf("%w: compressed entry without codec", ErrEntryCorrupted)
	}
	return codec.Decompress(data)
}

// Ensure codecs implement Codec
var (
	_ Codec = (*GzipCodec)(nil)
	_ Codec = (*NoopCodec)(nil)
)
