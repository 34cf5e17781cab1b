package erpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the response wrapper every backend endpoint uses.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// ButtonPermission grants or hides one UI action of a program.
type ButtonPermission struct {
	SystemID   string `json:"systemId"`
	ProgramNo  string `json:"programNo"`
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"objectType"`
	UseYn      string `json:"useYn"`
	VisibleYn  string `json:"visibleYn"`
	CreatedBy  string `json:"createdBy,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedBy  string `json:"updatedBy,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Visible reports whether the action should be shown.
func (p ButtonPermission) Visible() bool {
	return p.VisibleYn == "Y"
}

// decodeList accepts either a JSON array or a single object and always
// returns a slice. null and absent data decode to an empty slice.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("decode response data: %w", err)
	}
	return []T{one}, nil
}
