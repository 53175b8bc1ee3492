//go:build windows

package prompt

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// BIF_NEWDIALOGSTYLE
const browseFlags = 0x40

func selectFolder(title string, hwnd uintptr) (string, error) {
	// fails harmlessly when COM is already up on this thread
	_ = ole.CoInitialize(0)
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Shell.Application")
	if err != nil {
		return "", fmt.Errorf("failed to create Shell object: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return "", fmt.Errorf("failed to get IDispatch interface: %w", err)
	}
	defer shell.Release()

	folderObj, err := oleutil.CallMethod(shell, "BrowseForFolder", int(hwnd), title, browseFlags)
	if err != nil {
		return "", fmt.Errorf("failed to show folder dialog: %w", err)
	}
	defer folderObj.Clear()

	if folderObj.Value() == nil {
		return "", fmt.Errorf("folder selection cancelled")
	}

	folderItem := folderObj.ToIDispatch()
	if folderItem == nil {
		return "", fmt.Errorf("folder selection cancelled")
	}

	selfProp, err := oleutil.GetProperty(folderItem, "Self")
	if err != nil {
		return "", fmt.Errorf("failed to get folder item: %w", err)
	}
	defer selfProp.Clear()

	pathProp, err := oleutil.GetProperty(selfProp.ToIDispatch(), "Path")
	if err != nil {
		return "", fmt.Errorf("failed to get folder path: %w", err)
	}
	defer pathProp.Clear()

	selectedPath := pathProp.ToString()
	if selectedPath == "" {
		return "", fmt.Errorf("no folder selected")
	}

	return selectedPath, nil
}
