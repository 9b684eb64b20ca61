package models

// Image is an uploaded or produced image held in memory for one request.
type Image struct {
	Payload     []byte
	Name        string
	Size        int64
	Extension   string
	ContentType string
}
