// Package database provides connection management, schema migrations for
// registered models, driver error classification, query logging hooks,
// configuration types and health checks built on top of Bun.
package database
