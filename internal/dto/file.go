package dto

type FileResponse struct {
	ID         string `json:"id"`
	TopicID    string `json:"topic_id"`
	SubjectID  string `json:"subject_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	URL        string `json:"url,omitempty"`
	UploadedAt string `json:"uploaded_at"`
	IndexedAt  string `json:"indexed_at,omitempty"`
}

type FileIndexResultResponse struct {
	FileID  string `json:"file_id"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}
