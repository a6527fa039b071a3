package model

import "time"

// ================ Config ================
type StoreConfig struct {
	Backend    string `envconfig:"STORE_BACKEND" default:"memory"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"bookstore.db"`
	SeedFile   string `envconfig:"STORE_SEED_FILE"`
}

type SessionConfig struct {
	Backend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	Timeout time.Duration `envconfig:"SESSION_TIMEOUT" default:"30m"`
}

type CommerceConfig struct {
	UnitPrice    int `envconfig:"COMMERCE_UNIT_PRICE" default:"20"`
	RestockLevel int `envconfig:"COMMERCE_RESTOCK_LEVEL" default:"20"`
	SearchLimit  int `envconfig:"COMMERCE_SEARCH_LIMIT" default:"10"`
}

type ClassifierModelConfig struct {
	APIKey        string        `envconfig:"GEMINI_API_KEY"`
	BaseURL       string        `envconfig:"GEMINI_BASE_URL"`
	Model         string        `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens     int           `envconfig:"CLASSIFIER_MAX_TOKENS" default:"512"`
	Temperature   float32       `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.1"`
	MinConfidence float64       `envconfig:"CLASSIFIER_MIN_CONFIDENCE" default:"0.5"`
	Timeout       time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"15s"`
}

// Enabled reports whether an LLM backend is configured.
func (c ClassifierModelConfig) Enabled() bool {
	return c.APIKey != ""
}

// DefaultCommerceConfig mirrors the envconfig defaults for callers that build
// components without the environment.
func DefaultCommerceConfig() CommerceConfig {
	return CommerceConfig{UnitPrice: 20, RestockLevel: 20, SearchLimit: 10}
}
