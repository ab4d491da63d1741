package db

import "testing"

func TestEncodeVector_RoundTrip(t *testing.T) {
	in := []float32{1.0, -2.5, 0.125}
	blob := EncodeVector(in)
	if len(blob) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(blob))
	}
	out, err := DecodeVector(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeVector_BadLength(t *testing.T) {
	if _, err := DecodeVector("abc"); err == nil {
		t.Error("expected error for truncated blob")
	}
}
