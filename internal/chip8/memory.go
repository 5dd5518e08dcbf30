package chip8

import "fmt"

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: Font glyphs 0-F (5 bytes each)
//	0x050-0x1FF: Reserved interpreter area
//	0x200-0xFFF: Program and data space (3584 bytes)
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000
	// ProgramStart is the address where programs are loaded and start executing.
	ProgramStart = 0x200
	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1
	// MaxProgramSize is the largest program that can be loaded.
	MaxProgramSize = MemorySize - ProgramStart

	// FontAddress is the address of the first font glyph.
	FontAddress = 0x000
	// FontGlyphSize is the number of bytes of a single font glyph.
	FontGlyphSize = 5
)

// Font contains the 16 hexadecimal digit glyphs, each glyph is 5 rows of 4
// pixels stored in the high nibble.
var Font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat 4KB byte store of the machine.
type Memory struct {
	data [MemorySize]byte
}

// NewMemory returns a memory that has the given font glyphs copied to
// FontAddress. The font is copied, later changes to the passed table
// do not affect the memory.
func NewMemory(font [16 * FontGlyphSize]byte) *Memory {
	m := &Memory{}
	copy(m.data[FontAddress:], font[:])
	return m
}

// Load copies the program to ProgramStart. Nothing is written if the program
// does not fit.
func (m *Memory) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: program size %d, available %d",
			ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.data[ProgramStart:], program)
	return nil
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) > MaxAddress {
		return 0, fmt.Errorf("%w: reading $%04X", ErrAddressOutOfRange, address)
	}
	return m.data[address], nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) > MaxAddress {
		return fmt.Errorf("%w: writing $%04X", ErrAddressOutOfRange, address)
	}
	m.data[address] = value
	return nil
}

// ReadWord reads a big-endian 16-bit word, used for instruction fetches.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if err := m.checkRange(address, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// Slice returns a copy of length bytes starting at address.
func (m *Memory) Slice(address uint16, length int) ([]byte, error) {
	if err := m.checkRange(address, length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	copy(buf, m.data[address:])
	return buf, nil
}

// WriteSlice copies data to memory starting at address. Nothing is written
// if the data would extend past the end of memory.
func (m *Memory) WriteSlice(address uint16, data []byte) error {
	if err := m.checkRange(address, len(data)); err != nil {
		return err
	}
	copy(m.data[address:], data)
	return nil
}

// checkRange validates that [address, address+length) is inside memory.
func (m *Memory) checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: accessing %d bytes at $%04X",
			ErrAddressOutOfRange, length, address)
	}
	return nil
}
