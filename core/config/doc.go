// Package config loads the application configuration.
//
// Values come from the environment, optionally seeded from a .env file, with each
// section's defaults declared as struct tags in the owning package's config.go.
//
// # Sections
//
//   - server: HTTP port, API key, shutdown timeout
//   - storage: S3/MinIO credentials and bucket for the s3 image backend
//   - log: level, format, optional rotating log file
//   - database: driver (mysql, postgres, sqlite) and connection details
//   - sync: locale, format, batch size, workers, feed URLs, image backend, allow-list
//   - broker: NATS URL and subject for progress events
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.BatchSize)
package config
