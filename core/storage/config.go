package storage

// Config holds configuration for the cover mirror bucket.
type Config struct {
	// Endpoint is the URL of the S3-compatible service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the mirrored covers.
	Bucket string `mapstructure:"bucket" default:"weread"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// PublicURL is the base under which the bucket is publicly readable.
	// Objects are linked as <PublicURL>/<Bucket>/<key>.
	PublicURL string `mapstructure:"public_url" default:"http://localhost:9000"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// ObjectURL returns the public link of an object in the configured bucket.
func (c Config) ObjectURL(key string) string {
	base := c.PublicURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + c.Bucket + "/" + key
}
