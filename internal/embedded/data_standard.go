//go:build !embedded

package embedded

// Normal builds download the installer
var (
	bundledZip []byte
	bundledTag string
)
