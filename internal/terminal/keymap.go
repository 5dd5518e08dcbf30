package terminal

import (
	"github.com/nsf/termbox-go"
)

// keypad maps the left hand side of a QWERTY keyboard to the hexadecimal
// keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var keypad = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyForRune returns the keypad key mapped to a character.
func KeyForRune(ch rune) (uint8, bool) {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	key, ok := keypad[ch]
	return key, ok
}

type command int

const (
	commandNone command = iota
	commandStart
	commandStop
	commandStep
	commandToggleTimers
	commandQuit
)

func commandForKey(key termbox.Key) command {
	switch key {
	case termbox.KeyF5:
		return commandStart
	case termbox.KeyF6:
		return commandStop
	case termbox.KeyF7:
		return commandStep
	case termbox.KeyF8:
		return commandToggleTimers
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return commandQuit
	default:
		return commandNone
	}
}
