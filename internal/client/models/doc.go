// Package models defines the request and response contracts exchanged with
// the to-do REST API. Field names and JSON tags mirror the backend schema.
package models
