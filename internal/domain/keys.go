// Package domain holds the error taxonomy and constants shared across layers.
package domain

// KeyPrefix namespaces every attendex key in the shared store.
const KeyPrefix = "attendex:"
