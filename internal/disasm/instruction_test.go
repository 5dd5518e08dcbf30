package disasm

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected string
	}{
		{"CLS", 0x00E0, "cls"},
		{"RET", 0x00EE, "ret"},
		{"JP addr", 0x1234, "jp $234"},
		{"JP V0, addr", 0xB234, "jp V0, $234"},
		{"CALL", 0x2234, "call $234"},
		{"SE Vx, byte", 0x3234, "se V2, $34"},
		{"SNE Vx, Vy", 0x9230, "sne V2, V3"},
		{"LD Vx, byte", 0x6234, "ld V2, $34"},
		{"LD I, addr", 0xA234, "ld I, $234"},
		{"ADD Vx, Vy", 0x8234, "add V2, V3"},
		{"SUBN", 0x8237, "subn V2, V3"},
		{"SHL", 0x823E, "shl V2"},
		{"RND", 0xC234, "rnd V2, $34"},
		{"DRW", 0xD235, "drw V2, V3, $5"},
		{"SKNP", 0xE2A1, "sknp V2"},
		{"invalid E family", 0xE2FF, ".word $E2FF"},
		{"invalid F family", 0xF2FF, ".word $F2FF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mnemonic(tt.opcode))
		})
	}
}

func TestFormatInstruction(t *testing.T) {
	tests := []struct {
		name      string
		instrName string
		opcode    uint16
		expected  string
	}{
		{"LD Vx, DT", "ld", 0xF307, "V3, DT"},
		{"LD Vx, K", "ld", 0xF30A, "V3, K"},
		{"LD DT, Vx", "ld", 0xF315, "DT, V3"},
		{"LD ST, Vx", "ld", 0xF318, "ST, V3"},
		{"LD F, Vx", "ld", 0xF329, "F, V3"},
		{"LD B, Vx", "ld", 0xF333, "B, V3"},
		{"LD [I], Vx", "ld", 0xF355, "[I], V3"},
		{"LD Vx, [I]", "ld", 0xF365, "V3, [I]"},
		{"ADD I, Vx", "add", 0xF31E, "I, V3"},
		{"ADD Vx, byte", "add", 0x7A01, "VA, $01"},
		{"SE Vx, Vy", "se", 0x5AB0, "VA, VB"},
		{"unknown instruction", "unknown", 0x0000, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatInstruction(tt.instrName, tt.opcode))
		})
	}
}

func TestIsBranch(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected bool
	}{
		{"jump", 0x1200, true},
		{"call", 0x2300, true},
		{"jump with offset", 0xB200, false},
		{"load", 0x6000, false},
		{"invalid", 0xE2FF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBranch(tt.opcode))
		})
	}
}

func TestIsSkip(t *testing.T) {
	assert.True(t, IsSkip(0x3005))
	assert.True(t, IsSkip(0xE19E))
	assert.False(t, IsSkip(0x6005))
	assert.False(t, IsSkip(0xE2FF))
}
