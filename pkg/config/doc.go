// Package config provides configuration management for Shovel Heroes.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//   - Built-in defaults
//   - $SHOVEL_CONFIG_PATH/shovel.yml (default /etc/shovel-heroes/shovel.yml)
//   - SHOVEL_* environment variables, e.g. SHOVEL_JWT_SECRET, SHOVEL_PORT
//
// Every attribute remembers which source set it; `shovelctl configuration
// show` prints them.
//
// # Key Configuration Options
//
//   - jwt_secret: session token signing key (required, never printed)
//   - token_ttl: session lifetime in seconds
//   - permissions_file: YAML rules applied at startup and watched for changes
//   - permission_cache_ttl: seconds before the permission snapshot is reloaded
//
// DATABASE_URL and AUDIT_DATABASE_URL are read by pkg/db and the server
// command, not by this package.
package config
