package models

// VideoInfo is the metadata shown next to the URL input.
type VideoInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}
