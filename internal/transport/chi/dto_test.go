package chi

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/kailas-cloud/attendex/internal/domain"
)

func TestDecodeImage_PlainBase64(t *testing.T) {
	raw := []byte("fake-jpeg-bytes")

	got, err := decodeImage(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("decodeImage failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("got %q, want %q", got, raw)
	}
}

func TestDecodeImage_DataURI(t *testing.T) {
	raw := []byte("fake-jpeg-bytes")
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	got, err := decodeImage(uri)
	if err != nil {
		t.Fatalf("decodeImage failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("got %q, want %q", got, raw)
	}
}

func TestDecodeImage_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "%%%not-base64%%%"},
		{"data URI without comma", "data:image/jpeg;base64"},
		{"empty payload", "data:image/jpeg;base64,"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeImage(tc.input); !errors.Is(err, domain.ErrInvalidImage) {
				t.Errorf("expected ErrInvalidImage, got %v", err)
			}
		})
	}
}
