//go:build !windows

package prompt

func selectFolder(title string, hwnd uintptr) (string, error) {
	return "", ErrNoFolderPicker
}
