package env

const (
	// Prefix is the prefix of every bobvalue environment variable
	Prefix = "BOBVALUE"

	// GeminiAPIKeySuffix is appended to Prefix for the Gemini API key
	GeminiAPIKeySuffix = "_GEMINI_API_KEY"
)
