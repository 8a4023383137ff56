// Package migrations embeds the SQL schema, one directory per driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
