package ui

import (
	"fmt"
	"io"
)

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Success.Render(Current().SymDone+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Error.Render("✖ "+msg))
}

// Warn is for degraded but working states, like the in-memory fallback.
func Warn(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Pending.Render("! "+msg))
}
