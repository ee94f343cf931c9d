package models

// ImageOptions are the transform parameters requested from an image URL
// builder. Zero values are left out of the URL.
type ImageOptions struct {
	Width      int
	Height     int
	Fit        string
	AutoFormat bool
}
