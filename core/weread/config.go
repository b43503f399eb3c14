package weread

// Config holds the WeRead session settings.
type Config struct {
	// Cookie is the raw browser cookie string of a logged-in web session.
	Cookie string `mapstructure:"cookie" default:""`
	// WebURL is the web front end; it is touched before every API call.
	WebURL string `mapstructure:"web_url" default:"https://weread.qq.com/"`
	// APIURL is the root of the mobile API.
	APIURL string `mapstructure:"api_url" default:"https://i.weread.qq.com"`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
