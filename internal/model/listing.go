package model

import (
	"encoding/json"
	"time"
)

// ListingRecord is the compact listing shape handed back to the model
type ListingRecord struct {
	Address       *string  `json:"address,omitempty"`
	PropertyType  *string  `json:"property_type,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Bedrooms      *float64 `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFootage *float64 `json:"square_footage,omitempty"`
	LotSize       *float64 `json:"lot_size,omitempty"`
}

// ToolResult carries either listing data or an error message, never both
type ToolResult struct {
	Data  []ListingRecord
	Error string
}

// Listings builds a successful result
func Listings(records []ListingRecord) ToolResult {
	if records == nil {
		records = []ListingRecord{}
	}
	return ToolResult{Data: records}
}

// Failure builds an error result
func Failure(message string) ToolResult {
	return ToolResult{Error: message}
}

// IsError reports whether the result is an error marker
func (r ToolResult) IsError() bool {
	return r.Error != ""
}

// MarshalJSON implements json.Marshaler
func (r ToolResult) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	data := r.Data
	if data == nil {
		data = []ListingRecord{}
	}
	return json.Marshal(struct {
		Data []ListingRecord `json:"data"`
	}{data})
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ToolResult) UnmarshalJSON(b []byte) error {
	var wire struct {
		Data  []ListingRecord `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	if wire.Error != "" {
		*r = Failure(wire.Error)
		return nil
	}
	*r = Listings(wire.Data)
	return nil
}

// String renders the result as the JSON text sent to the model
func (r ToolResult) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"error":"failed to encode tool result"}`
	}
	return string(b)
}

// ToolCallLog is one audited gateway invocation
type ToolCallLog struct {
	RequestID   string          `json:"request_id" db:"request_id"`
	CallID      string          `json:"call_id" db:"call_id"`
	Arguments   json.RawMessage `json:"arguments" db:"arguments"`
	Outcome     string          `json:"outcome" db:"outcome"`
	ResultCount int             `json:"result_count" db:"result_count"`
	Error       *string         `json:"error,omitempty" db:"error"`
	DurationMs  int64           `json:"duration_ms" db:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
