//go:build embedded

package embedded

import (
	_ "embed"
)

// Offline builds carry the OpenStarbound installer:
//   1. Place OpenStarbound-Windows-Installer.zip in internal/embedded/release/
//   2. Write its release tag (e.g. v0.1.14) to internal/embedded/release/tag.txt
//   3. Run: go build -tags embedded

//go:embed release/OpenStarbound-Windows-Installer.zip
var bundledZip []byte

//go:embed release/tag.txt
var bundledTag string
