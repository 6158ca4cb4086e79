package secret

// SecretStore provides a pluggable interface for storing sensitive data
// such as the image generation API key. Implementations: the OS keychain,
// environment variables, and a chain of both.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Well-known keys.
const (
	KeyImageGenAPIKey = "gemini_api_key"
	KeyS3SecretKey    = "s3_secret_access_key"
)
