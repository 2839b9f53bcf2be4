package migrations

import "embed"

// SessionsFS holds the session, projection and activity schema.
//
//go:embed sessions/*.sql
var SessionsFS embed.FS
