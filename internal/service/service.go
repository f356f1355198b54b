// Package service holds the billing rules: numbering, payment status,
// merging, and keeping each bill's PDF in step with the database.
package service
