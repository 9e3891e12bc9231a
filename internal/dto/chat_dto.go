package dto

// ChatRequest is one question typed by a student.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatResponse is the filtered assistant reply.
type ChatResponse struct {
	Reply    string `json:"reply"`
	Filtered bool   `json:"filtered"`
}
