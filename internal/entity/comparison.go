package entity

// ComparedImage is one asset enriched for a comparison request: metadata,
// usage, and a freshly computed stride fingerprint. Fingerprint is empty
// when the content could not be fetched or decoded.
type ComparedImage struct {
	Asset

	Fingerprint string `json:"fingerprint,omitempty"`
	Usage       Usage  `json:"usage"`
}

// Analysis is the aggregate duplicate verdict over 2-4 images.
type Analysis struct {
	FilenameMatch           bool `json:"filename_match"`
	NormalizedFilenameMatch bool `json:"normalized_filename_match"`
	HashMatch               bool `json:"hash_match"`
	SizeMatch               bool `json:"size_match"`
	FormatMatch             bool `json:"format_match"`
	FormatCompatible        bool `json:"format_compatible"`

	SimilarityScore int `json:"similarity_score"` // 0-100
	PHashSimilarity int `json:"phash_similarity"` // 0-100

	IsDuplicate    bool   `json:"is_duplicate"`
	Recommendation string `json:"recommendation"`
}

// Comparison is the full result of a compare request.
type Comparison struct {
	Images   []ComparedImage `json:"images"`
	Analysis Analysis        `json:"analysis"`
}
