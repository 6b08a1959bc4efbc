package ingest

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/whalechillz/image-assets/internal/infrastructure/exifmeta"
	"github.com/whalechillz/image-assets/internal/infrastructure/fingerprint"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			v := uint8((x + y) * 255 / 89)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestIngest(t *testing.T) {
	t.Parallel()

	data := testPNG(t)
	uc := New(fingerprint.New(), exifmeta.New())

	result, err := uc.Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	wantMD5 := md5.Sum(data)
	if result.HashMD5 != hex.EncodeToString(wantMD5[:]) {
		t.Errorf("HashMD5 = %q, want digest of input bytes", result.HashMD5)
	}

	wantSHA := sha256.Sum256(data)
	if result.HashSHA256 != hex.EncodeToString(wantSHA[:]) {
		t.Errorf("HashSHA256 = %q, want digest of input bytes", result.HashSHA256)
	}

	if result.Width != 60 || result.Height != 30 {
		t.Errorf("dims = %dx%d, want 60x30", result.Width, result.Height)
	}
	if result.Format != "png" {
		t.Errorf("Format = %q, want png", result.Format)
	}
	if !strings.HasPrefix(result.PHashDCT, "p:") {
		t.Errorf("PHashDCT = %q, want p:-prefixed perception hash", result.PHashDCT)
	}

	// a bare PNG carries no attribution
	if result.ExifCreator != "" || result.ExifCopyright != "" {
		t.Errorf("attribution = %q/%q, want empty", result.ExifCreator, result.ExifCopyright)
	}
}

func TestIngestEmptyContent(t *testing.T) {
	t.Parallel()

	uc := New(fingerprint.New(), exifmeta.New())

	_, err := uc.Ingest(context.Background(), nil)
	if !errors.Is(err, errs.ErrEmptyContent) {
		t.Errorf("err = %v, want ErrEmptyContent", err)
	}
}

func TestIngestUndecodableContent(t *testing.T) {
	t.Parallel()

	uc := New(fingerprint.New(), exifmeta.New())

	if _, err := uc.Ingest(context.Background(), []byte("definitely not an image")); err == nil {
		t.Error("Ingest on garbage bytes: want error, got nil")
	}
}
