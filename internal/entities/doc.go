// Package entities reads services, routes and consumers from the Admin API.
//
// List readers fetch a single page and return an envelope with pagination
// metadata, the records projected onto camelCase shapes, and usage hints.
// Detail readers return the upstream document unmodified. Admin client errors
// are passed through untouched so callers can still match them with
// errors.Is and errors.As.
package entities
