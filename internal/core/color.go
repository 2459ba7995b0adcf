package core

// Color is the foreground colour of a screen cell.
// The host maps each value to a terminal colour.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed           // surfaces missing from the manifest
	ColorGreen         // grass
	ColorYellow
	ColorBlue    // water by kind
	ColorMagenta // bases
	ColorCyan
	ColorWhite
	ColorBrightRed    // the cursor while firing
	ColorBrightGreen  // spawns
	ColorBrightYellow // the cursor, pause banner
	ColorBrightBlue   // water
	ColorBrightCyan   // ice
	ColorBrightWhite  // snow, overlay text
	ColorOrange
	ColorGray // walls, roads
	ColorSand // dirt
)
