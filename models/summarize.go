package models

type SummarizePostResponse struct {
	Success    bool     `json:"success"`
	Summary    string   `json:"summary"`
	DocumentID string   `json:"documentId"`
	FileInfo   FileInfo `json:"fileInfo"`
}

type FileInfo struct {
	Name string `json:"name"`
	// Size of the upload in bytes.
	Size int64 `json:"size"`
	// TextLength is the number of characters extracted from the file.
	TextLength int `json:"textLength"`
	// FileType is the lower case extension, e.g. ".docx".
	FileType string `json:"fileType"`
}

type SummarizeGetResponse struct {
	Message       string       `json:"message"`
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user"`
	Method        string       `json:"method"`
}
