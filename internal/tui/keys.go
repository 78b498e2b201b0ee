package tui

// Key bindings.
const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keyRetry  = "r"
	keyNext   = "n"
	keyPrev   = "p"
	keyGrow   = "+"
	keyShrink = "-"
	keyFilter = "f"
	keyDays   = "d"
	keyChat   = "c"
	keyCtrlR  = "ctrl+r"
	keyPgDown = "pgdown"
	keyPgUp   = "pgup"
	sortKeys  = "12345"
)
