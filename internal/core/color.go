package core

// Color is the foreground color of a screen cell. Values map to ANSI
// colors in the renderer.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorBlue
	ColorYellow
	ColorGreen
	ColorMagenta
	ColorGray
	ColorBrightRed
	ColorBrightBlue
	ColorBrightWhite
)
