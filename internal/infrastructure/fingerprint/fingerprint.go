package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// gridSize is the side of the downsample grid, giving gridSize*gridSize
	// intensity samples per image.
	gridSize = 32

	// HashLen is the length of a stride fingerprint in bits.
	HashLen = 64
)

type Engine struct {
}

func New() *Engine {
	return &Engine{}
}

// Fingerprint reduces raw image bytes to a HashLen-character '0'/'1' string.
// The image is force-fitted to a 32x32 greyscale grid ignoring aspect ratio,
// each pixel is thresholded against the mean intensity, and the resulting
// 1024 bits are stride-sampled down to 64.
//
// The stride sampling is positional, not a block average, and must stay
// bit-for-bit compatible with fingerprints the previous pipeline produced.
// DCTHash is the better hash for anything that can afford to re-hash.
func (e *Engine) Fingerprint(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("Engine - Fingerprint - imaging.Decode: %w", err)
	}

	small := imaging.Grayscale(imaging.Resize(img, gridSize, gridSize, imaging.Lanczos))

	pix := make([]uint8, 0, gridSize*gridSize)
	sum := 0
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			// Grayscale leaves R == G == B.
			v := small.NRGBAAt(x, y).R
			pix = append(pix, v)
			sum += int(v)
		}
	}

	mean := float64(sum) / float64(len(pix))

	bits := make([]byte, len(pix))
	for i, v := range pix {
		if float64(v) >= mean {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}

	var sb strings.Builder
	sb.Grow(HashLen)
	for i := 0; i < HashLen; i++ {
		sb.WriteByte(bits[i*len(bits)/HashLen])
	}

	return sb.String(), nil
}

// DCTHash computes a goimagehash perception hash ("p:..." form). Stored at
// ingest next to the stride fingerprint; the comparison verdict does not
// consume it.
func (e *Engine) DCTHash(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("Engine - DCTHash - imaging.Decode: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("Engine - DCTHash - goimagehash.PerceptionHash: %w", err)
	}

	return hash.ToString(), nil
}

// Identify returns pixel dimensions and the decoded format name
// (jpeg, png, gif, webp) without decoding the full image.
func (e *Engine) Identify(data []byte) (int, int, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("Engine - Identify - image.DecodeConfig: %w", err)
	}

	return cfg.Width, cfg.Height, format, nil
}

// Distance returns the Hamming distance between two fingerprints. A missing
// fingerprint or a length mismatch counts as maximal distance: the safe
// default on any mismatch is "completely dissimilar", not an error.
func Distance(a, b string) int {
	if a == "" || b == "" || len(a) != len(b) {
		return HashLen
	}

	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}

	return d
}

// Similarity converts the Hamming distance between two fingerprints to a
// 0-100 percentage. Missing fingerprints score 0.
func Similarity(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	return int(math.Round((1 - float64(Distance(a, b))/float64(HashLen)) * 100))
}
