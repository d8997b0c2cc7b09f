package cache

import (
	"bytes"
	"compress/gzip"
	"crypto/rand"
	"strings"
	"testing"
)

func TestNewGzipCodec_InvalidLevel(t *testing.T) {
	if _, err := NewGzipCodec(42); err == nil {
		t.Error("NewGzipCodec(42) should reject an out-of-range level")
	}
	if _, err := NewGzipCodec(gzip.BestCompression); err != nil {
		t.Errorf("NewGzipCodec(BestCompression) error = %v", err)
	}
}

func TestGzipCodec_RoundTrip(t *testing.T) {
	codec, err := NewGzipCodec(gzip.DefaultCompression)
	if err != nil {
		t.Fatalf("NewGzipCodec() error = %v", err)
	}

	original := []byte(strings.Repeat("a compressible payload ", 100))

	compressed, err := codec.Compress(original)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("Compressed size %d not below original %d", len(compressed), len(original))
	}

	// Bit-for-bit fidelity.
	out, err := codec.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(out, original) {
		t.Error("Round trip did not reproduce the original payload")
	}
}

func TestGzipCodec_DecompressGarbage(t *testing.T) {
	codec, _ := NewGzipCodec(gzip.DefaultCompression)

	if _, err := codec.Decompress([]byte("not gzip data")); err == nil {
		t.Error("Decompress() of garbage should error")
	}
}

func TestCompressionPolicy_ShouldCompress(t *testing.T) {
	p := CompressionPolicy{MinSize: 100}

	tests := []struct {
		size int
		want bool
	}{
		{0, false},
		{100, false}, // at threshold, not above
		{101, true},
		{5000, true},
	}

	for _, tt := range tests {
		if got := p.ShouldCompress(tt.size); got != tt.want {
			t.Errorf("ShouldCompress(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}

	// Zero threshold disables compression.
	if (CompressionPolicy{}).ShouldCompress(10000) {
		t.Error("ShouldCompress with zero MinSize should be false")
	}
}

func TestCompressionPolicy_Encode(t *testing.T) {
	codec, _ := NewGzipCodec(gzip.DefaultCompression)
	p := CompressionPolicy{MinSize: 64}

	t.Run("below threshold stays uncompressed", func(t *testing.T) {
		data := []byte("small")
		stored, compressed, err := p.Encode(codec, data)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if compressed {
			t.Error("Encode() compressed a below-threshold payload")
		}
		if !bytes.Equal(stored, data) {
			t.Error("Encode() altered an uncompressed payload")
		}
	})

	t.Run("above threshold compresses", func(t *testing.T) {
		data := []byte(strings.Repeat("compressible ", 50))
		stored, compressed, err := p.Encode(codec, data)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if !compressed {
			t.Error("Encode() did not compress an above-threshold payload")
		}
		out, err := Decode(codec, stored, compressed)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("Decode() did not reproduce the original payload")
		}
	})

	t.Run("incompressible payload kept original", func(t *testing.T) {
		data := make([]byte, 256)
		if _, err := rand.Read(data); err != nil {
			t.Fatal(err)
		}
		stored, compressed, err := p.Encode(codec, data)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if compressed {
			t.Error("Encode() kept a compressed form larger than the original")
		}
		if !bytes.Equal(stored, data) {
			t.Error("Encode() altered an incompressible payload")
		}
	})

	t.Run("nil codec degrades to uncompressed", func(t *testing.T) {
		data := []byte(strings.Repeat("x", 1000))
		stored, compressed, err := p.Encode(nil, data)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if compressed || !bytes.Equal(stored, data) {
			t.Error("Encode() without codec should store the original")
		}
	})
}

func TestDecode_Uncompressed(t *testing.T) {
	data := []byte("plain")
	out, err := Decode(nil, data, false)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Decode() altered an uncompressed payload")
	}
}

func TestDecode_CompressedWithoutCodec(t *testing.T) {
	if _, err := Decode(nil, []byte("data"), true); err == nil {
		t.Error("Decode() of a compressed entry without a codec should error")
	}
}

func TestNoopCodec(t *testing.T) {
	codec := NewNoopCodec()

	data := []byte("payload")
	out, err := codec.Compress(data)
	if err != nil || !bytes.Equal(out, data) {
		t.Errorf("Compress() = %q, %v, want identity", out, err)
	}
	out, err = codec.Decompress(data)
	if err != nil || !bytes.Equal(out, data) {
		t.Errorf("Decompress() = %q, %v, want identity", out, err)
	}
}
