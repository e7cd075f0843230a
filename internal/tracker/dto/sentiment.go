package dto

// AnalyzeSentimentRequest is the payload for ad hoc text classification.
type AnalyzeSentimentRequest struct {
	Text string `json:"text"`
}

// SentimentResult is the structured classification for one piece of text.
// Probabilities holds one entry per label and sums to roughly 1.0.
type SentimentResult struct {
	Sentiment     string             `json:"sentiment"`
	Probabilities map[string]float64 `json:"probabilities"`
	KeyTopics     []string           `json:"key_topics,omitempty"`
}

// GeminiAPIRequest is the request payload for the Gemini API.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content represents the content of a request or response.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a part of the content.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the response from the Gemini API.
type GeminiAPIResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is a candidate response from the Gemini API.
type Candidate struct {
	Content Content `json:"content"`
}
