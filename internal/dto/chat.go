package dto

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response     string `json:"response"`
	HasContext   bool   `json:"has_context"`
	EntriesFound int    `json:"entries_found"`
}
