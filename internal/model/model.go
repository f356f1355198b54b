// Package model holds the billing records and the request payloads that
// create and mutate them.
package model
