package common

const (
	RedisKeyPriceSweepLock = "price.sweep.lock"
	RedisKeyQuote          = "quote:%s"

	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)
