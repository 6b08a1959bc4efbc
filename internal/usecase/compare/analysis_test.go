package compare

import (
	"strings"
	"testing"

	"github.com/whalechillz/image-assets/internal/entity"
)

func strPtr(s string) *string { return &s }

type imgOpts struct {
	filename    string
	format      string
	size        int64
	md5         *string
	sha256      *string
	fingerprint string
	used        bool
}

func testImage(o imgOpts) entity.ComparedImage {
	img := entity.ComparedImage{
		Asset: entity.Asset{
			Filename:   o.filename,
			Format:     o.format,
			Size:       o.size,
			HashMD5:    o.md5,
			HashSHA256: o.sha256,
		},
		Fingerprint: o.fingerprint,
	}
	if o.used {
		img.Usage = entity.Usage{
			Used:   true,
			Count:  1,
			UsedIn: []entity.UsageRef{{Type: "blog", Title: "post", URL: "/post"}},
		}
	}
	return img
}

func TestNormalizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "uuid prefix stripped",
			in:   "a1b2c3d4-e5f6-7890-abcd-ef1234567890-Hero_Shot 01.jpg",
			want: "heroshot01",
		},
		{
			name: "extension stripped",
			in:   "banner.png",
			want: "banner",
		},
		{
			name: "case folded",
			in:   "MyPhoto.JPG",
			want: "myphoto",
		},
		{
			name: "hangul preserved",
			in:   "골프-이미지_01.webp",
			want: "골프이미지01",
		},
		{
			name: "punctuation and spaces dropped",
			in:   "my photo (1).jpeg",
			want: "myphoto1",
		},
		{
			name: "no extension",
			in:   "raw-bytes",
			want: "rawbytes",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeFilename(tc.in); got != tc.want {
				t.Errorf("normalizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHashFamilyMatch(t *testing.T) {
	t.Parallel()

	md5 := func(img entity.ComparedImage) *string { return img.HashMD5 }

	tests := []struct {
		name   string
		images []entity.ComparedImage
		want   bool
	}{
		{
			name: "all present and equal",
			images: []entity.ComparedImage{
				testImage(imgOpts{md5: strPtr("abc")}),
				testImage(imgOpts{md5: strPtr("abc")}),
			},
			want: true,
		},
		{
			name: "present but different",
			images: []entity.ComparedImage{
				testImage(imgOpts{md5: strPtr("abc")}),
				testImage(imgOpts{md5: strPtr("def")}),
			},
			want: false,
		},
		{
			name: "family missing on one image",
			images: []entity.ComparedImage{
				testImage(imgOpts{md5: strPtr("abc")}),
				testImage(imgOpts{}),
			},
			want: false,
		},
		{
			name: "empty string counts as missing",
			images: []entity.ComparedImage{
				testImage(imgOpts{md5: strPtr("abc")}),
				testImage(imgOpts{md5: strPtr("")}),
			},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := hashFamilyMatch(tc.images, md5); got != tc.want {
				t.Errorf("hashFamilyMatch = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAnalyzeHashMatchFallsBackToSHA256(t *testing.T) {
	t.Parallel()

	// md5 present on one image only must not match; the complete sha256
	// family carries the signal
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "a.jpg", format: "jpg", size: 1000, md5: strPtr("m1"), sha256: strPtr("s")}),
		testImage(imgOpts{filename: "b.jpg", format: "jpg", size: 1000, sha256: strPtr("s")}),
	}

	a := analyze(images)
	if !a.HashMatch {
		t.Error("HashMatch = false, want true via sha256 family")
	}
}

func TestFormatCompatiblePair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		formats []string
		want    bool
	}{
		{name: "jpg and webp", formats: []string{"jpg", "webp"}, want: true},
		{name: "png and webp", formats: []string{"webp", "png"}, want: true},
		{name: "jpg and png", formats: []string{"jpg", "png"}, want: false},
		{name: "webp and webp", formats: []string{"webp", "webp"}, want: false},
		{name: "three images", formats: []string{"jpg", "webp", "png"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := formatCompatiblePair(tc.formats); got != tc.want {
				t.Errorf("formatCompatiblePair(%v) = %v, want %v", tc.formats, got, tc.want)
			}
		})
	}
}

func TestPairwiseSimilarity(t *testing.T) {
	t.Parallel()

	ones := strings.Repeat("1", 64)
	zeros := strings.Repeat("0", 64)

	tests := []struct {
		name         string
		fingerprints []string
		want         int
	}{
		{name: "identical pair", fingerprints: []string{ones, ones}, want: 100},
		{name: "opposite pair", fingerprints: []string{ones, zeros}, want: 0},
		{name: "missing one of two", fingerprints: []string{ones, ""}, want: 0},
		{name: "all missing", fingerprints: []string{"", "", ""}, want: 0},
		{name: "triple skips missing", fingerprints: []string{ones, ones, ""}, want: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := pairwiseSimilarity(tc.fingerprints); got != tc.want {
				t.Errorf("pairwiseSimilarity(%v) = %d, want %d", tc.fingerprints, got, tc.want)
			}
		})
	}
}

func TestAnalyzeSizeTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sizeB     int64
		wantScore int
	}{
		{name: "within 10 percent", sizeB: 1100, wantScore: 20},
		{name: "within 20 percent", sizeB: 1150, wantScore: 15},
		{name: "within 50 percent", sizeB: 1400, wantScore: 10},
		{name: "within 100 percent", sizeB: 1900, wantScore: 5},
		{name: "beyond 100 percent", sizeB: 2100, wantScore: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// different names and formats keep every other signal at zero
			images := []entity.ComparedImage{
				testImage(imgOpts{filename: "a.jpg", format: "jpg", size: 1000}),
				testImage(imgOpts{filename: "b.png", format: "png", size: tc.sizeB}),
			}

			a := analyze(images)
			if a.SimilarityScore != tc.wantScore {
				t.Errorf("SimilarityScore = %d, want %d", a.SimilarityScore, tc.wantScore)
			}
		})
	}
}

func TestAnalyzeExactDuplicates(t *testing.T) {
	t.Parallel()

	fp := strings.Repeat("10", 32)
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "photo.jpg", format: "jpg", size: 1000, md5: strPtr("abc"), fingerprint: fp}),
		testImage(imgOpts{filename: "photo.jpg", format: "jpg", size: 1000, md5: strPtr("abc"), fingerprint: fp}),
	}

	a := analyze(images)

	if !a.FilenameMatch || !a.NormalizedFilenameMatch {
		t.Error("filename signals should both match")
	}
	if !a.HashMatch {
		t.Error("HashMatch = false, want true")
	}
	if !a.SizeMatch || !a.FormatMatch {
		t.Error("size and format signals should both match")
	}
	if a.PHashSimilarity != 100 {
		t.Errorf("PHashSimilarity = %d, want 100", a.PHashSimilarity)
	}
	if a.SimilarityScore != 100 {
		t.Errorf("SimilarityScore = %d, want 100", a.SimilarityScore)
	}
	if !a.IsDuplicate {
		t.Error("IsDuplicate = false, want true")
	}
	if a.Recommendation != "None of the images are in use. Keep one and delete the rest." {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzeReencodedPairWithoutFingerprints(t *testing.T) {
	t.Parallel()

	// same logical name, jpg vs webp, wildly different sizes, nothing
	// decodable: the 85-score fallback still flags the pair
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "hero.jpg", format: "jpg", size: 1000}),
		testImage(imgOpts{filename: "hero.webp", format: "webp", size: 400}),
	}

	a := analyze(images)

	if !a.NormalizedFilenameMatch {
		t.Error("NormalizedFilenameMatch = false, want true")
	}
	if !a.FormatCompatible {
		t.Error("FormatCompatible = false, want true")
	}
	if a.PHashSimilarity != 0 {
		t.Errorf("PHashSimilarity = %d, want 0", a.PHashSimilarity)
	}
	if a.SimilarityScore != 49 {
		t.Errorf("SimilarityScore = %d, want 49 (40 filename + 9 compatible format)", a.SimilarityScore)
	}
	if !a.IsDuplicate {
		t.Error("IsDuplicate = false, want true via re-encoded fallback")
	}
	if !strings.Contains(a.Recommendation, "WebP-first") {
		t.Errorf("recommendation should mention the WebP-first policy: %q", a.Recommendation)
	}
}

func TestAnalyzeUnrelatedImages(t *testing.T) {
	t.Parallel()

	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "a.jpg", format: "jpg", size: 1000}),
		testImage(imgOpts{filename: "b.png", format: "png", size: 5000}),
	}

	a := analyze(images)

	if a.SimilarityScore != 0 {
		t.Errorf("SimilarityScore = %d, want 0", a.SimilarityScore)
	}
	if a.IsDuplicate {
		t.Error("IsDuplicate = true, want false")
	}
	if a.Recommendation != "Similarity 0%: not duplicates, keep all images." {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzePerceptualMatchAlone(t *testing.T) {
	t.Parallel()

	// metadata disagrees on everything but size; identical fingerprints
	// still force the duplicate verdict
	fp := strings.Repeat("1", 64)
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "a.jpg", format: "jpg", size: 1000, fingerprint: fp, used: true}),
		testImage(imgOpts{filename: "b.png", format: "png", size: 1000, fingerprint: fp}),
	}

	a := analyze(images)

	if a.PHashSimilarity != 100 {
		t.Errorf("PHashSimilarity = %d, want 100", a.PHashSimilarity)
	}
	// base 20 (size) blended with perceptual 100: 20*0.7 + 100*0.3
	if a.SimilarityScore != 44 {
		t.Errorf("SimilarityScore = %d, want 44", a.SimilarityScore)
	}
	if !a.IsDuplicate {
		t.Error("IsDuplicate = false, want true via perceptual similarity")
	}
	if a.Recommendation != "Keep the 1 image(s) in use; the 1 unused image(s) can be deleted." {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzeAllImagesInUse(t *testing.T) {
	t.Parallel()

	fp := strings.Repeat("1", 64)
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "photo.jpg", format: "jpg", size: 1000, md5: strPtr("x"), fingerprint: fp, used: true}),
		testImage(imgOpts{filename: "photo.jpg", format: "jpg", size: 1000, md5: strPtr("x"), fingerprint: fp, used: true}),
	}

	a := analyze(images)

	if !a.IsDuplicate {
		t.Error("IsDuplicate = false, want true")
	}
	if a.Recommendation != "All images are in use. None should be deleted." {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzeNearMissRecommendations(t *testing.T) {
	t.Parallel()

	// normalized filename (40) + size within 20 percent (15) + format (10)
	// scores 65: similar but below every duplicate threshold
	images := []entity.ComparedImage{
		testImage(imgOpts{filename: "IMG_01.jpg", format: "jpg", size: 1000}),
		testImage(imgOpts{filename: "img_01.jpg", format: "jpg", size: 1150}),
	}

	a := analyze(images)

	if a.SimilarityScore != 65 {
		t.Errorf("SimilarityScore = %d, want 65", a.SimilarityScore)
	}
	if a.IsDuplicate {
		t.Error("IsDuplicate = true, want false")
	}
	if a.Recommendation != "Similarity 65%: some similarity, compare visually if needed." {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
}
