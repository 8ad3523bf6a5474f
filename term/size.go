package term

import xterm "golang.org/x/term"

// Size returns the terminal dimensions of fd, or 80x24 when fd is not a
// terminal.
func Size(fd int) (width, height int) {
	if !xterm.IsTerminal(fd) {
		return 80, 24
	}
	w, h, err := terminalSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
