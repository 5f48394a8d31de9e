package config

const (
	defaultBind              = ":3000"
	defaultPublicDir         = "public"
	defaultCORSOrigin        = "http://localhost:3000"
	defaultDataDir           = "data"
	defaultHistoryLimit      = 50
	defaultLLMBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel          = "gpt-4o-mini"
	defaultLLMMaxTokens      = 5000
	defaultLLMTimeoutSeconds = 60
	defaultScraperTimeout    = 10
	defaultScraperRetries    = 1
	defaultScraperUserAgent  = "Mozilla/5.0 (compatible; AIWorkoutAnalyzer/1.0; +http://localhost)"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	placeholderAPIKey        = "your_openai_api_key_here"
	// materials are budgeted at max_tokens - 1000, so anything smaller leaves no room.
	minLLMMaxTokens   = 1001
	maxScraperRetries = 5
	maxHistoryLimit   = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:       defaultBind,
			PublicDir:  defaultPublicDir,
			CORSOrigin: defaultCORSOrigin,
		},
		Storage: Storage{
			DataDir:      defaultDataDir,
			HistoryLimit: defaultHistoryLimit,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Scraper: Scraper{
			TimeoutSeconds: defaultScraperTimeout,
			Retries:        defaultScraperRetries,
			UserAgent:      defaultScraperUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
