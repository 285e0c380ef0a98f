// Package output implements the Porcelain and Human formatters (spec
// §4.10) and the alignment pass that precedes Human output (spec §4.11).
package output

import (
	"os"

	"golang.org/x/term"
)

var (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		disableColors()
	} else if !term.IsTerminal(int(os.Stdout.Fd())) {
		disableColors()
	}
}

func disableColors() {
	reset, bold, dim, yellow, cyan = "", "", "", "", ""
}

// termWidth returns the terminal width, defaulting to 80.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
