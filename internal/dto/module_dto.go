package dto

import "encoding/json"

// ModuleQuery selects the modules visible to a role.
type ModuleQuery struct {
	Role string `query:"role" validate:"omitempty,oneof=teacher student"`
}

// ModuleResponse describes one module visible to a role.
type ModuleResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Icon        *string         `json:"icon"`
	EntryType   string          `json:"entry_type"`
	Entry       json.RawMessage `json:"entry"`
	Launch      string          `json:"launch"`
	Folder      string          `json:"folder"`
}
