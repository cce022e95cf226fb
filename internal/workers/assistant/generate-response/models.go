// internal/workers/assistant/generate-response/models.go
package generateresponse

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	Reply     string  `json:"reply"`
	Route     string  `json:"route"`
	Intent    string  `json:"intent,omitempty"`
	Score     float64 `json:"score"`
	Sentiment string  `json:"sentiment,omitempty"`
	City      string  `json:"city,omitempty"`
	SessionID string  `json:"sessionId,omitempty"`
}
