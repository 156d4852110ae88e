package models

// MediaAsset is an image persisted locally and, once uploaded, known to
// WordPress. RemoteID is zero until the upload succeeds.
type MediaAsset struct {
	LocalPath string `json:"local_path"`
	MimeType  string `json:"mime_type"`
	RemoteID  int    `json:"remote_id"`
	RemoteURL string `json:"remote_url"`
}

// ImageParams are the fixed sampling parameters sent to the image backend.
type ImageParams struct {
	Steps    int     `json:"steps"`
	Guidance float64 `json:"guidance"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// WordPressMedia is the subset of the /media response we read.
type WordPressMedia struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}
