package httpdto

// UploadResponse is returned after storing an attachment blob. The
// returned fields slot directly into SendMessageRequest.Attachments.
type UploadResponse struct {
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	FileName  string `json:"file_name"`
	Width     *int32 `json:"width,omitempty"`
	Height    *int32 `json:"height,omitempty"`
}
