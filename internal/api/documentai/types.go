package documentai

// ProcessRequest submits one raw document for synchronous processing.
type ProcessRequest struct {
	RawDocument     RawDocument `json:"rawDocument"`
	SkipHumanReview bool        `json:"skipHumanReview"`
}

// RawDocument is base64 document content plus its MIME type.
type RawDocument struct {
	Content  string `json:"content"`
	MIMEType string `json:"mimeType"`
}

// ProcessResponse is the processor output. Only the recognized text is
// consumed; layout and entity detail are ignored.
type ProcessResponse struct {
	Document Document `json:"document"`
}

// Document is the processed document.
type Document struct {
	Text string `json:"text"`
}
