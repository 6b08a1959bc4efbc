package compare

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/internal/infrastructure/fingerprint"
)

var (
	// "a1b2c3d4-e5f6-7890-abcd-ef1234567890-img_0001.jpg" -> "img_0001.jpg"
	uuidPrefixRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}-(.+)$`)
	extensionRe  = regexp.MustCompile(`\.[^/.]+$`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9가-힣]`)
)

// normalizeFilename strips a UUID prefix, the extension, case, and every
// character that is neither alphanumeric nor Hangul, so two names of the
// same logical file collapse to one key.
func normalizeFilename(name string) string {
	if name == "" {
		return ""
	}

	base := name
	if m := uuidPrefixRe.FindStringSubmatch(name); m != nil {
		base = m[1]
	}

	base = extensionRe.ReplaceAllString(base, "")

	return nonAlnumRe.ReplaceAllString(strings.ToLower(base), "")
}

// analyze aggregates the boolean signals, the composite score and the
// duplicate verdict over 2-4 enriched images.
func analyze(images []entity.ComparedImage) entity.Analysis {
	var a entity.Analysis

	filenames := make([]string, 0, len(images))
	normalized := make([]string, 0, len(images))
	formats := make([]string, 0, len(images))
	fingerprints := make([]string, 0, len(images))

	for _, img := range images {
		filenames = append(filenames, img.Filename)
		normalized = append(normalized, normalizeFilename(img.Filename))
		formats = append(formats, strings.ToLower(img.Format))
		fingerprints = append(fingerprints, img.Fingerprint)
	}

	a.FilenameMatch = allEqual(filenames)
	a.NormalizedFilenameMatch = allEqual(normalized)

	a.HashMatch = hashFamilyMatch(images, func(img entity.ComparedImage) *string { return img.HashMD5 }) ||
		hashFamilyMatch(images, func(img entity.ComparedImage) *string { return img.HashSHA256 })

	minSize, maxSize := sizeRange(images)
	a.SizeMatch = float64(maxSize-minSize) <= float64(minSize)*0.1

	a.FormatMatch = allEqual(formats)
	a.FormatCompatible = formatCompatiblePair(formats)

	a.PHashSimilarity = pairwiseSimilarity(fingerprints)

	base := compositeScore(a, minSize, maxSize)
	final := base
	if a.PHashSimilarity > 0 {
		final = int(math.Round(float64(base)*0.7 + float64(a.PHashSimilarity)*0.3))
	}
	a.SimilarityScore = final

	a.IsDuplicate = verdict(a)
	a.Recommendation = recommend(images, a)

	return a
}

func allEqual(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// hashFamilyMatch reports whether one hash family (md5 or sha256) matches
// across the whole request. A family present on only some of the images is
// no match for that family.
func hashFamilyMatch(images []entity.ComparedImage, hash func(entity.ComparedImage) *string) bool {
	first := ""
	for i, img := range images {
		h := hash(img)
		if h == nil || *h == "" {
			return false
		}
		if i == 0 {
			first = *h
			continue
		}
		if *h != first {
			return false
		}
	}
	return first != ""
}

func sizeRange(images []entity.ComparedImage) (int64, int64) {
	minSize, maxSize := images[0].Size, images[0].Size
	for _, img := range images[1:] {
		if img.Size < minSize {
			minSize = img.Size
		}
		if img.Size > maxSize {
			maxSize = img.Size
		}
	}
	return minSize, maxSize
}

// formatCompatiblePair reports the cross-format pair a re-encoding pipeline
// commonly produces: exactly two images, one jpg/jpeg/png and one webp.
func formatCompatiblePair(formats []string) bool {
	if len(formats) != 2 {
		return false
	}

	hasRaster := false
	hasWebp := false
	for _, f := range formats {
		switch f {
		case "jpg", "jpeg", "png":
			hasRaster = true
		case "webp":
			hasWebp = true
		}
	}

	return hasRaster && hasWebp
}

// pairwiseSimilarity averages perceptual similarity over every unordered
// pair where both fingerprints exist. No valid pairs means 0.
func pairwiseSimilarity(fingerprints []string) int {
	total, pairs := 0, 0
	for i := range fingerprints {
		for j := i + 1; j < len(fingerprints); j++ {
			if fingerprints[i] == "" || fingerprints[j] == "" {
				continue
			}
			total += fingerprint.Similarity(fingerprints[i], fingerprints[j])
			pairs++
		}
	}

	if pairs == 0 {
		return 0
	}

	return int(math.Round(float64(total) / float64(pairs)))
}

// compositeScore is the weighted metadata score. The weights sum to 100, so
// the sum is already a percentage.
func compositeScore(a entity.Analysis, minSize, maxSize int64) int {
	score := 0

	// normalized filename: weight 40
	if a.NormalizedFilenameMatch {
		score += 40
	}

	// content hash: weight 30
	if a.HashMatch {
		score += 30
	}

	// size: weight 20, tiered partial credit outside the 10% window
	switch {
	case a.SizeMatch:
		score += 20
	case minSize > 0:
		diff := float64(maxSize-minSize) / float64(minSize)
		switch {
		case diff <= 0.2:
			score += 15
		case diff <= 0.5:
			score += 10
		case diff <= 1.0:
			score += 5
		}
	}

	// format: weight 10, a re-encoded pair keeps most of it
	switch {
	case a.FormatMatch:
		score += 10
	case a.FormatCompatible:
		score += 9
	}

	return score
}

func verdict(a entity.Analysis) bool {
	// same name, only the encoding differs: trust the perceptual score,
	// fall back to 85 when no fingerprints were computable
	reencodedPair := a.NormalizedFilenameMatch && a.FormatCompatible
	reencodedScore := 0
	if reencodedPair {
		if a.PHashSimilarity > 0 {
			reencodedScore = a.PHashSimilarity
		} else {
			reencodedScore = 85
		}
	}

	return a.HashMatch ||
		(a.NormalizedFilenameMatch && a.SizeMatch && a.SimilarityScore >= 60) ||
		(reencodedPair && (reencodedScore >= 70 || a.SimilarityScore >= 70)) ||
		a.SimilarityScore >= 80 ||
		a.PHashSimilarity >= 85
}

func recommend(images []entity.ComparedImage, a entity.Analysis) string {
	if !a.IsDuplicate {
		switch {
		case a.SimilarityScore >= 80:
			return fmt.Sprintf("Similarity %d%%: likely duplicates, a visual check is recommended.", a.SimilarityScore)
		case a.SimilarityScore >= 60:
			return fmt.Sprintf("Similarity %d%%: some similarity, compare visually if needed.", a.SimilarityScore)
		default:
			return fmt.Sprintf("Similarity %d%%: not duplicates, keep all images.", a.SimilarityScore)
		}
	}

	used, unused := 0, 0
	for _, img := range images {
		if img.Usage.Used {
			used++
		} else {
			unused++
		}
	}

	var rec string
	switch {
	case used > 0 && unused > 0:
		rec = fmt.Sprintf("Keep the %d image(s) in use; the %d unused image(s) can be deleted.", used, unused)
	case unused > 1:
		rec = "None of the images are in use. Keep one and delete the rest."
	default:
		rec = "All images are in use. None should be deleted."
	}

	// WebP-first policy: unused JPGs lose to their WebP counterpart
	hasWebp, hasJPG, unusedJPG := false, false, 0
	for _, img := range images {
		switch strings.ToLower(img.Format) {
		case "webp":
			hasWebp = true
		case "jpg", "jpeg":
			hasJPG = true
			if !img.Usage.Used {
				unusedJPG++
			}
		}
	}
	if hasWebp && hasJPG && unusedJPG > 0 {
		rec += fmt.Sprintf(" Per the WebP-first policy, the %d unused JPG image(s) can be deleted.", unusedJPG)
	}

	return rec
}
