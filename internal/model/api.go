package model

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadyResponse struct {
	OK          bool   `json:"ok"`
	ServiceName string `json:"service_name,omitempty"`
}

type ConvertRequest struct {
	Pinyin string `json:"pinyin"`
}

type ConvertResponse struct {
	Result     string `json:"result"`
	Context    string `json:"context"`
	DurationMS int64  `json:"duration_ms"`
}

type ContextResponse struct {
	Context string `json:"context"`
	Length  int    `json:"length"`
}

type SetContextRequest struct {
	Context string `json:"context"`
}

type HistoryEntry struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	Pinyin     string `json:"pinyin"`
	Output     string `json:"output"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// StreamRequest and StreamResponse are websocket frames on /v1/ws.
type StreamRequest struct {
	Pinyin string `json:"pinyin"`
}

type StreamResponse struct {
	OK      bool   `json:"ok"`
	Result  string `json:"result,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Context string `json:"context"`
}
