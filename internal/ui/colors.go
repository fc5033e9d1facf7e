package ui

import "fmt"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Warning marks pages that were processed despite a problem, such as an error status
func Warning(s string) string {
	return ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

// Status renders a document status code: green for 2xx, yellow for 3xx,
// red from 400 up. Zero means the backend did not report one.
func Status(code int) string {
	label := fmt.Sprintf("HTTP %d", code)
	switch {
	case code == 0:
		return ColorDim + "HTTP -" + ColorReset
	case code < 300:
		return Success(label)
	case code < 400:
		return Warning(label)
	default:
		return Error(label)
	}
}
