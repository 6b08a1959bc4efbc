package entity

// UsageRef is one place an asset is referenced from.
type UsageRef struct {
	Type  string `json:"type"` // blog, funnel, homepage, static_page, ...
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Usage summarizes where an asset is referenced. A failed usage lookup
// degrades to the zero value (not used, no references).
type Usage struct {
	Used   bool       `json:"used"`
	Count  int        `json:"count"`
	UsedIn []UsageRef `json:"used_in"`
}
