// Package config provides configuration loading and validation for the
// gallery server.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (GALLERY_ prefix, plus PORT)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with GALLERY_ prefix:
//   - server.port → GALLERY_SERVER_PORT (PORT is accepted as a fallback)
//   - storage.path → GALLERY_STORAGE_PATH
//   - upload.max_file_size → GALLERY_UPLOAD_MAX_FILE_SIZE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: host, port and HTTP timeouts
//   - Upload: max_files, max_file_size, rate_per_minute, cleanup_timeout
//   - Storage: upload root and metadata file name
//   - Countries: optional YAML file replacing the built-in country table
//   - CORS: cross-origin resource sharing settings
//   - Metrics: Prometheus endpoint toggle
//   - Log: level and optional rotated log file
//   - Env: dev (colored text logs) or prod (JSON logs)
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Upload limits must be positive
//   - Log level must be debug, info, warn, or error
//   - Env must be dev or prod
package config
