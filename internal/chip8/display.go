package chip8

import (
	"iter"
	"strings"
	"sync"
)

const (
	// DisplayWidth is the width of the screen in pixels.
	DisplayWidth = 64
	// DisplayHeight is the height of the screen in pixels.
	DisplayHeight = 32

	rowBytes = DisplayWidth / 8
)

// Point is the coordinate of a single pixel.
type Point struct {
	X, Y int
}

// Frame is a copy of the screen content, 1 bit per pixel with the leftmost
// pixel of each byte in the most significant bit.
type Frame [DisplayHeight][rowBytes]byte

// Pixel returns whether the pixel at the wrapped coordinate is set.
func (f *Frame) Pixel(x, y int) bool {
	x, y = wrap(x, y)
	return f[y][x/8]&(0x80>>(x%8)) != 0
}

// Pixels returns a sequence of the coordinates of all set pixels, row by row.
func (f *Frame) Pixels() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := range DisplayHeight {
			for column, b := range f[y] {
				if b == 0 {
					continue
				}
				for bit := range 8 {
					if b&(0x80>>bit) == 0 {
						continue
					}
					if !yield(Point{X: column*8 + bit, Y: y}) {
						return
					}
				}
			}
		}
	}
}

// String renders the frame as text, one line per row using '#' for set
// and '.' for cleared pixels.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.Grow(DisplayHeight * (DisplayWidth + 1))
	for y := range DisplayHeight {
		for x := range DisplayWidth {
			if f.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Display is the monochrome framebuffer. It is written by the CPU and read
// concurrently by the display loop; readers never observe a partial draw.
type Display struct {
	mu     sync.RWMutex
	buffer Frame
}

// Clear turns all pixels off.
func (d *Display) Clear() {
	d.mu.Lock()
	d.buffer = Frame{}
	d.mu.Unlock()
}

// Pixel returns whether the pixel at the wrapped coordinate is set.
func (d *Display) Pixel(x, y int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buffer.Pixel(x, y)
}

// SetPixel sets or clears the pixel at the wrapped coordinate.
func (d *Display) SetPixel(x, y int, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffer.set(x, y, on)
}

// Draw XORs the sprite onto the screen with its top left corner at (x, y).
// Every sprite byte is one row of 8 pixels, most significant bit first.
// Coordinates wrap around the screen edges. The returned collision flag is
// set when at least one pixel was turned off by this draw.
func (d *Display) Draw(x, y int, sprite []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	collision := false
	for row, data := range sprite {
		py := y + row
		for bit := range 8 {
			if data&(0x80>>bit) == 0 {
				continue
			}
			px := x + bit
			if d.buffer.Pixel(px, py) {
				d.buffer.set(px, py, false)
				collision = true
			} else {
				d.buffer.set(px, py, true)
			}
		}
	}
	return collision
}

// Snapshot returns a copy of the current screen content.
func (d *Display) Snapshot() Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buffer
}

// Pixels returns the coordinates of all pixels that are set at the time of
// the call. The sequence iterates over a snapshot and does not hold any lock.
func (d *Display) Pixels() iter.Seq[Point] {
	frame := d.Snapshot()
	return frame.Pixels()
}

func (f *Frame) set(x, y int, on bool) {
	x, y = wrap(x, y)
	mask := byte(0x80 >> (x % 8))
	if on {
		f[y][x/8] |= mask
	} else {
		f[y][x/8] &^= mask
	}
}

// wrap maps a coordinate onto the screen, the screen is a torus.
func wrap(x, y int) (int, int) {
	x %= DisplayWidth
	if x < 0 {
		x += DisplayWidth
	}
	y %= DisplayHeight
	if y < 0 {
		y += DisplayHeight
	}
	return x, y
}
