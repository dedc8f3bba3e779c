// Command shovelctl runs and administers the Shovel Heroes API.
//
// A fresh deployment is brought up with:
//
//	export DATABASE_URL=postgres://shovel@localhost/shovel?sslmode=disable
//	export SHOVEL_JWT_SECRET=$(openssl rand -hex 32)
//
//	shovelctl db migrate
//	shovelctl user create ops@example.org --role super_admin
//	shovelctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - AUDIT_DATABASE_URL: audit_logs database (default: DATABASE_URL)
//   - SHOVEL_CONFIG_PATH: directory holding shovel.yml
//   - SHOVEL_JWT_SECRET, SHOVEL_PORT, SHOVEL_LOG_LEVEL and the other
//     SHOVEL_* overrides listed by "shovelctl configuration show"
package main
