package types

// ModelEntry is a catalog entry as exposed by GET /models/available.
type ModelEntry struct {
	// Model name as reported by the generative-model backend.
	// example: llava:7b
	Name string `json:"name" example:"llava:7b"`
	// Whether this model is the currently active one.
	// example: true
	IsActive bool `json:"is_active" example:"true"`
}

// Occurrence cross-references how often an object appears in the image and
// how often it (or one of its synonyms) is mentioned in the text.
type Occurrence struct {
	// Number of mentions found in the text.
	// example: 2
	Text int `json:"occurence_text" example:"2"`
	// Number of detections in the image.
	// example: 3
	Image int `json:"occurence_image" example:"3"`
}
