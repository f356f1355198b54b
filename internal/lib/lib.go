// Package lib groups the modules that sit beside the request layers rather
// than inside them. See the pdf, job and email subpackages.
package lib
