package dto

// IngestResult carries everything the ingest pipeline derives from raw
// asset bytes before it is written back to the metadata store.
type IngestResult struct {
	HashMD5    string
	HashSHA256 string

	Width  int
	Height int
	Format string

	PHashDCT string

	ExifCreator   string
	ExifCopyright string
}
