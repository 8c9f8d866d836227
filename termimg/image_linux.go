package termimg

import (
	"os"

	"golang.org/x/sys/unix"
)

// cellSize reports the pixel size of one terminal cell, or zeros when
// stdout is not a terminal that knows its pixel dimensions.
func cellSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 0, 0
	}
	return int(ws.Xpixel) / int(ws.Col), int(ws.Ypixel) / int(ws.Row)
}
