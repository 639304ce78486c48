package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func gzipCompress(data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(data)
	_ = gz.Close()
	return buf.Bytes()
}

func brCompress(data []byte) []byte {
	var buf bytes.Buffer
	br := brotli.NewWriter(&buf)
	_, _ = br.Write(data)
	_ = br.Close()
	return buf.Bytes()
}

func zstdCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zstd.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDeflateCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func rawDeflateCompress(data []byte) []byte {
	var buf bytes.Buffer
	dw, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = dw.Write(data)
	_ = dw.Close()
	return buf.Bytes()
}

func TestDecodeBody_NoEncoding(t *testing.T) {
	plain := []byte("hello world")
	decoded, changed, err := DecodeBody("", plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatalf("expected changed=false")
	}
	if !bytes.Equal(decoded, plain) {
		t.Fatalf("decoded body mismatch: got %q want %q", decoded, plain)
	}
}

func TestDecodeBody_Gzip(t *testing.T) {
	plain := []byte("gzip payload")
	comp := gzipCompress(plain)
	decoded, changed, err := DecodeBody("gzip", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected changed=true for gzip")
	}
	if !bytes.Equal(decoded, plain) {
		t.Fatalf("decoded body mismatch")
	}
}

func TestDecodeBody_Brotli(t *testing.T) {
	plain := []byte("brotli payload")
	comp := brCompress(plain)
	decoded, changed, err := DecodeBody("br", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("brotli decode failed")
	}
}

func TestDecodeBody_Zstd(t *testing.T) {
	plain := []byte("zstd payload")
	comp := zstdCompress(plain)
	decoded, changed, err := DecodeBody("zstd", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("zstd decode failed")
	}
}

func TestDecodeBody_Deflate_ZlibWrapped(t *testing.T) {
	plain := []byte("deflate zlib wrapped")
	comp := zlibDeflateCompress(plain)
	decoded, changed, err := DecodeBody("deflate", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("deflate (zlib) decode failed")
	}
}

func TestDecodeBody_Deflate_Raw(t *testing.T) {
	plain := []byte("deflate raw payload")
	comp := rawDeflateCompress(plain)
	decoded, changed, err := DecodeBody("deflate", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("deflate (raw) decode failed")
	}
}

func TestDecodeBody_Identity_Compress_NoOp(t *testing.T) {
	plain := []byte("no-op encodings")
	decoded, changed, err := DecodeBody("identity, compress", plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatalf("expected no change for identity/compress")
	}
	if !bytes.Equal(decoded, plain) {
		t.Fatalf("decoded mismatch for identity/compress")
	}
}

func TestDecodeBody_UnknownEncoding_ReturnsError(t *testing.T) {
	plain := []byte("abc")
	_, _, err := DecodeBody("foo", plain)
	if err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestDecodeBody_Chained_GzipThenBr(t *testing.T) {
	plain := []byte("chain payload")
	// Apply gzip then br (server would set Content-Encoding: gzip, br)
	gz := gzipCompress(plain)
	br := brCompress(gz)
	decoded, changed, err := DecodeBody("gzip, br", br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("chained decode failed")
	}
}

func TestDecodeBody_CaseAndWhitespace(t *testing.T) {
	plain := []byte("gzip case payload")
	comp := gzipCompress(plain)
	decoded, changed, err := DecodeBody("  GZip  ", comp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || !bytes.Equal(decoded, plain) {
		t.Fatalf("case-insensitive decode failed")
	}
}
