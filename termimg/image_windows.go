package termimg

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetCurrentConsoleFont = modkernel32.NewProc("GetCurrentConsoleFont")
)

type consoleFontInfo struct {
	nFont      uint32
	dwFontSize windows.Coord
}

// cellSize reports the console font size in pixels.
func cellSize() (int, int) {
	handle := windows.Handle(os.Stdout.Fd())

	var cfi consoleFontInfo
	ret, _, _ := procGetCurrentConsoleFont.Call(uintptr(handle), 0, uintptr(unsafe.Pointer(&cfi)))
	if ret == 0 {
		return 0, 0
	}
	return int(cfi.dwFontSize.X), int(cfi.dwFontSize.Y)
}
