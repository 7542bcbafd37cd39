// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, column lookups, offset pagination, transactions, and
// upsert support. Every error it returns has been passed through
// database.ClassifyError.
package repository
