package hexdump_test

import (
	"encoding/binary"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffsplit/hexdump"
	"ffsplit/process/memory_map"
)

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripped(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestFullLineLayout(t *testing.T) {
	out := stripped(hexdump.DumpBytes([]byte("Hello, FFSPLIT!!")))

	assert.Equal(t,
		"00000000  48 65 6c 6c 6f 2c 20 46 | 46 53 50 4c 49 54 21 21 | Hello, F FSPLIT!!\n",
		out)
}

func TestShortLineKeepsASCIIAligned(t *testing.T) {
	data := append([]byte("0123456789abcdef"), 'A', 'B', 0x00, 0x7F)

	lines := strings.Split(strings.TrimRight(stripped(hexdump.DumpBytes(data)), "\n"), "\n")
	require.Len(t, lines, 2)

	// The ASCII divider must sit in the same column on full and short lines.
	assert.Equal(t, strings.LastIndex(lines[0], "|"), strings.LastIndex(lines[1], "|"))
	assert.True(t, strings.HasSuffix(lines[1], "| AB.."), "got %q", lines[1])
}

func TestStartOffsetShifts(t *testing.T) {
	options := hexdump.DefaultOptions()
	options.StartOffset = 0x7f1200

	out := stripped(hexdump.Dump(make([]byte, 16), options))
	assert.True(t, strings.HasPrefix(out, "007f1200  "), "got %q", out)
}

func TestMaxLinesTruncates(t *testing.T) {
	options := hexdump.DefaultOptions()
	options.MaxLines = 2

	out := stripped(hexdump.Dump(make([]byte, 64), options))
	assert.Contains(t, out, "... 32 more bytes\n")
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 3)
}

func TestHighlightMarksPattern(t *testing.T) {
	data := []byte("xxabcxxxxxxxxxxx")

	raw := hexdump.Highlighted(data, []byte("abc"))
	// Highlighted cells carry a background color, plain cells never do.
	assert.Contains(t, raw, "\x1b[40m")
	assert.NotContains(t, hexdump.DumpBytes(data), "\x1b[40m")
}

func TestAnnotatedFlagsMappedPointers(t *testing.T) {
	mm := memory_map.MemoryMap{
		{Address: 0x500000, Size: 0x1000, Perms: "r--p", Path: "[heap]"},
	}

	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:], 0x500010) // mapped
	binary.LittleEndian.PutUint64(data[8:], 0x12)     // not mapped

	out := stripped(hexdump.Annotated(data, 0x400000, mm))
	assert.Contains(t, out, "0x500010")
	assert.NotContains(t, out, "0x12 ")
}
