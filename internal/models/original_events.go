package models

import (
	"github.com/google/uuid"
)

// OriginalEvent announces that an original image was stored or
// removed for the given model field.
type OriginalEvent struct {
	RequestID uuid.UUID `json:"requestId"`

	// Namespace qualified model, such as 'gallery.photo'
	Model string `json:"model"`
	Field string `json:"field"`

	// Storage name of the original file
	FilePath string `json:"filePath"`
}
