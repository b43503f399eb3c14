package notion

// Config holds the Notion API settings.
type Config struct {
	// Token is the integration secret.
	Token string
	// BaseURL is the API root.
	BaseURL string
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int
}

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)
