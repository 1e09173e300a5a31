package data

// BinaryContent is the payload of a read or write.
type BinaryContent struct {
	// Raw object bytes
	Data []byte

	// MIME type; empty when unknown or not provided
	ContentType string
}

// NewBinaryContent creates content from data with an optional MIME type hint.
func NewBinaryContent(data []byte, contentType string) *BinaryContent {
	return &BinaryContent{
		Data:        data,
		ContentType: contentType,
	}
}

// Size returns the payload length in bytes.
func (bc *BinaryContent) Size() int64 {
	if bc == nil {
		return 0
	}

	return int64(len(bc.Data))
}

// HasContentType reports whether an explicit MIME type is set.
func (bc *BinaryContent) HasContentType() bool {
	return bc != nil && bc.ContentType != ""
}
