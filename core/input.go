package core

// MouseButton identifies a pointer button independent of the windowing layer.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Modifier is a bit set of held modifier keys.
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// Key identifies a keyboard key independent of the windowing layer.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	Key1
	Key2
	Key3
	KeyD
	KeyE
	KeyN
	KeyR
	KeyW
	KeyZ
	KeyF5
	KeyF6
	KeyF9
)

var keyNames = map[Key]string{
	KeySpace:     "Space",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	Key1:         "1",
	Key2:         "2",
	Key3:         "3",
	KeyD:         "D",
	KeyE:         "E",
	KeyN:         "N",
	KeyR:         "R",
	KeyW:         "W",
	KeyZ:         "Z",
	KeyF5:        "F5",
	KeyF6:        "F6",
	KeyF9:        "F9",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}
