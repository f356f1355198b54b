// Package repository holds the SQL for bills and their line items.
//
// Lookups that find nothing return errors wrapped as "table:<name>:%w" around
// pgx.ErrNoRows so the error handler can name the missing entity.
package repository
