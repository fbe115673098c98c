// Package schemas holds the JSON Schemas for documents accepted from clients.
package schemas

import (
	_ "embed"
)

// Profile is the schema for profile imports (a partial profile record).
//
//go:embed profile.schema.json
var Profile string
