package s3

// Document is an exported invoice file stored under its generated filename
type Document struct {
	Name        string `json:"name"`
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

func NewDocument(name string, data []byte, contentType string) *Document {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Document{
		Name:        name,
		Data:        data,
		ContentType: contentType,
	}
}
