// Package logger builds the zap logger shared by the sync commands and the
// HTTP server.
//
// New picks zap's development config for level "debug" and the production
// config otherwise, then applies the configured level and encoding. Entries
// always use the keys "time", "level" and "message", so console output and the
// file sink read the same.
//
// # File sink
//
// When log.file is set, every entry is also written as JSON to that file
// through lumberjack. The file rotates at log.max_size_mb, keeps
// log.max_backups old files for log.max_age_days days and compresses them.
// The file shares the console level.
//
// # Requests
//
// WithRayID adds the ray_id set by the rayid middleware to a logger, so the
// lines of one HTTP trigger can be grouped.
//
//	log, err := logger.New(&cfg.Log)
//	if err != nil {
//		return err
//	}
//	logger.WithRayID(log, c).Info("Sync triggered", zap.String("scope", "notes"))
package logger
