//go:build windows

package console

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	user32   = windows.NewLazySystemDLL("user32.dll")

	attachConsole     = kernel32.NewProc("AttachConsole")
	allocConsole      = kernel32.NewProc("AllocConsole")
	getConsoleWindow  = kernel32.NewProc("GetConsoleWindow")
	setConsoleTitle   = kernel32.NewProc("SetConsoleTitleW")
	showWindowProc    = user32.NewProc("ShowWindow")
	setForegroundProc = user32.NewProc("SetForegroundWindow")
	enumWindowsProc   = user32.NewProc("EnumWindows")
	isVisibleProc     = user32.NewProc("IsWindowVisible")
	getTextProc       = user32.NewProc("GetWindowTextW")
)

const (
	ATTACH_PARENT_PROCESS = ^uint32(0) // -1 as uint32
	SW_MINIMIZE           = 6
	SW_RESTORE            = 9
)

// Attach tries to attach to or create a console window.
// Returns true if a console is available for output.
func Attach() bool {
	if h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE); err == nil && h != 0 && h != windows.InvalidHandle {
		attached = true
		return true
	}

	if r, _, _ := attachConsole.Call(uintptr(ATTACH_PARENT_PROCESS)); r == 0 {
		if r, _, _ := allocConsole.Call(); r == 0 {
			return false
		}
	}

	if h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE); err == nil && h != windows.InvalidHandle {
		os.Stdout = os.NewFile(uintptr(h), "/dev/stdout")
		out = os.Stdout
	}
	if h, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE); err == nil && h != windows.InvalidHandle {
		os.Stderr = os.NewFile(uintptr(h), "/dev/stderr")
	}
	if h, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && h != windows.InvalidHandle {
		os.Stdin = os.NewFile(uintptr(h), "/dev/stdin")
	}

	attached = true
	return true
}

// SetTitle sets the console window title
func SetTitle(title string) error {
	if !attached {
		return nil
	}

	titlePtr, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return err
	}

	r1, _, err := setConsoleTitle.Call(uintptr(unsafe.Pointer(titlePtr)))
	if r1 == 0 {
		return fmt.Errorf("SetConsoleTitle failed: %v", err)
	}

	return nil
}

// GetWindow returns the console window handle (HWND)
func GetWindow() uintptr {
	if err := getConsoleWindow.Find(); err != nil {
		return 0
	}
	hwnd, _, _ := getConsoleWindow.Call()
	return hwnd
}

// BringToFront restores the console window and gives it focus
func BringToFront() {
	hwnd := GetWindow()
	if hwnd == 0 {
		return
	}
	showWindowProc.Call(hwnd, SW_RESTORE)
	setForegroundProc.Call(hwnd)
}

// MinimizeByTitle minimizes every visible top-level window whose title
// contains name and returns how many were minimized.
func MinimizeByTitle(name string) int {
	var matched []uintptr
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := isVisibleProc.Call(hwnd); visible == 0 {
			return 1
		}
		buf := make([]uint16, 256)
		n, _, _ := getTextProc.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if titleMatches(windows.UTF16ToString(buf[:n]), name) {
			matched = append(matched, hwnd)
		}
		return 1
	})

	if err := enumWindowsProc.Find(); err != nil {
		log.Debugf("EnumWindows unavailable: %v", err)
		return 0
	}
	enumWindowsProc.Call(cb, 0)

	for _, hwnd := range matched {
		showWindowProc.Call(hwnd, SW_MINIMIZE)
	}
	return len(matched)
}
