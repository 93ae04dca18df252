package domain

// KeyPrefix namespaces every key written to the backing store.
const KeyPrefix = "shopdex:"

// Result size limits of the public operations.
const (
	SearchLimit         = 20
	SimilarLimit        = 10
	RecommendationLimit = 10
)

// SimilarityThreshold is the exclusive lower bound a similarity must exceed to be reported.
const SimilarityThreshold = 0.1
