// Package config loads the configuration of the sync tool.
//
// Values come from struct tag defaults, a .env file in the working directory
// and the process environment, in increasing priority. Nested keys map to
// upper-case variables joined by underscores, so source.cookie is read from
// SOURCE_COOKIE and target.names.books from TARGET_NAMES_BOOKS.
//
// # Configuration Structure
//
//   - Server: listen address and API key of the trigger server
//   - Source: reading platform cookie and endpoints
//   - Target: workspace driver (notion or local), token, root page, collection names
//   - Database: backing database of the local workspace driver
//   - Storage: S3/MinIO bucket of the cover mirror
//   - Sync: block style, colors, bookmarks, throttling, retries, timezone
//   - Log: level, format and optional rotated file
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner, err := pipeline.Build(cfg, logger)
package config
