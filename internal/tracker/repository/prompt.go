package repository

import (
	"fmt"
)

// BuildClassifySentimentPrompt builds the prompt asking for a single-label
// financial sentiment classification with per-label probabilities.
func BuildClassifySentimentPrompt(text string) string {
	return fmt.Sprintf(`You are a financial news sentiment analyst. Classify the following text about a publicly traded company and respond with JSON only, no prose, in exactly this format:

{
  "sentiment": "Positive | Negative | Neutral",
  "probabilities": {
    "Positive": {0.0 - 1.0},
    "Negative": {0.0 - 1.0},
    "Neutral": {0.0 - 1.0}
  },
  "key_topics": ["{short topic tags, e.g. 'earnings', 'guidance', 'lawsuit'}"]
}

Rules:
- The three probabilities must sum to 1.0.
- "sentiment" must be the label with the highest probability.
- Judge the likely effect on the stock price, not the general tone.

Text:
%s`, text)
}
