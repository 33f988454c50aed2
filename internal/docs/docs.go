// Package docs embeds the user-facing language primer.
package docs

import _ "embed"

//go:embed PRIMER.md
var Primer string
