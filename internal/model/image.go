package model

// ImageAnalysis is the structured result of understanding an item photo.
type ImageAnalysis struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
