package digest

import (
	"errors"
	"strings"
	"testing"
)

func TestKnownVectors(t *testing.T) {
	tests := []struct {
		algo Algorithm
		in   string
		want string
	}{
		{SHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{SHA256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA512, "abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
		{BLAKE2b256, "", "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
	}

	for _, tt := range tests {
		d, err := New(tt.algo)
		if err != nil {
			t.Fatalf("New(%s): %v", tt.algo, err)
		}
		if got := d.Sum([]byte(tt.in)); got != tt.want {
			t.Errorf("%s(%q) = %s, want %s", tt.algo, tt.in, got, tt.want)
		}
		got, err := d.SumReader(strings.NewReader(tt.in))
		if err != nil {
			t.Fatalf("SumReader: %v", err)
		}
		if got != tt.want {
			t.Errorf("%s SumReader(%q) = %s, want %s", tt.algo, tt.in, got, tt.want)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for raw, want := range map[string]Algorithm{
		"":           SHA256,
		"SHA-256":    SHA256,
		"sha512":     SHA512,
		" blake2b ":  BLAKE2b256,
		"blake2b256": BLAKE2b256,
	} {
		got, err := ParseAlgorithm(raw)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseAlgorithm(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseAlgorithm("md5"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
	if _, err := New("md5"); err == nil {
		t.Fatal("expected New to reject unsupported algorithm")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestSumReaderPropagatesErrors(t *testing.T) {
	if _, err := MustNew(SHA256).SumReader(failingReader{}); err == nil {
		t.Fatal("expected read error")
	}
}
