// internal/workers/assistant/classify-sentiment/models.go
package classifysentiment

type Input struct {
	Text string `json:"text"`
}

type Output struct {
	Sentiment string  `json:"sentiment"`
	Polarity  float64 `json:"polarity"`
}
