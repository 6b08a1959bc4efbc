package response

type Error struct {
	Error string `json:"error"`
}

type AssetsNotFound struct {
	Error     string `json:"error"`
	Requested int    `json:"requested"`
	Found     int    `json:"found"`
}

type UploadAsset struct {
	AssetID     string `json:"asset_id"`
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"content_type"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}
