// Package hexdump renders memory windows for the dump and scan commands:
// colored hex and ASCII columns, with 8-byte slots holding mapped addresses
// annotated as pointers on the right.
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/Moonlight-Companies/gologger/coloransi"

	"ffsplit/process/memory_map"
)

type Options struct {
	// BytesPerLine defines the number of bytes to display per line.
	BytesPerLine int

	// GroupSize defines the grouping of bytes (usually 1, 2, 4, or 8).
	GroupSize int

	// ShowASCII determines whether to show the ASCII column.
	ShowASCII bool

	// ShowOffset determines whether to show the address column.
	ShowOffset bool

	// StartOffset is the address of the first byte, shown in the
	// address column and implied for pointer annotation.
	StartOffset uint64

	// OffsetWidth is the width of the address column in hex digits.
	OffsetWidth int

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
	ZeroColor         coloransi.ColorCode

	// Highlight marks every occurrence of this byte pattern.
	Highlight      []byte
	HighlightColor coloransi.ColorCode
	HighlightBack  coloransi.ColorCode

	// MaxLines truncates the dump (0 for no limit).
	MaxLines int

	// ShowPointers annotates 8-byte slots that fall inside MemoryMap.
	ShowPointers bool
	MemoryMap    memory_map.MemoryMap
}

func DefaultOptions() Options {
	return Options{
		BytesPerLine:      16,
		GroupSize:         1,
		ShowASCII:         true,
		ShowOffset:        true,
		OffsetWidth:       8,
		OffsetColor:       coloransi.Cyan,
		HexColor:          coloransi.Green,
		ASCIIColor:        coloransi.White,
		NonPrintableColor: coloransi.BrightBlack,
		ZeroColor:         coloransi.BrightBlack,
		HighlightColor:    coloransi.Yellow,
		HighlightBack:     coloransi.Black,
	}
}

// Dump renders data with the given options.
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpBytes renders data with default options.
func DumpBytes(data []byte) string {
	return Dump(data, DefaultOptions())
}

// Highlighted renders data with every occurrence of pattern marked. Scan hits
// are shown this way.
func Highlighted(data, pattern []byte) string {
	options := DefaultOptions()
	options.Highlight = pattern
	return Dump(data, options)
}

// Annotated renders a window of process memory starting at addr, flagging
// slots that point into mapped regions. This is the dump command's format.
func Annotated(data []byte, addr uint64, mm memory_map.MemoryMap) string {
	options := DefaultOptions()
	options.StartOffset = addr
	options.ShowPointers = true
	options.MemoryMap = mm
	options.NonPrintableColor = coloransi.Red
	return Dump(data, options)
}

func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.GroupSize <= 0 {
		options.GroupSize = 1
	}
	if options.OffsetWidth <= 0 {
		options.OffsetWidth = 8
	}

	mask := highlightMask(data, options.Highlight)

	lines := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lines >= options.MaxLines {
			fmt.Fprintf(writer, "... %d more bytes\n", len(data)-offset)
			break
		}

		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], mask[offset:end], uint64(offset)+options.StartOffset, options)
		lines++
	}
}

func formatLine(writer io.Writer, line []byte, mask []bool, addr uint64, options Options) {
	if options.ShowOffset {
		fmt.Fprint(writer, coloransi.Foreground(options.OffsetColor, fmt.Sprintf("%0*x", options.OffsetWidth, addr)), "  ")
	}

	cells := hexCells(line, mask, options)

	// The mid-line divider only appears once the line reaches past half of
	// BytesPerLine; the padding math below has to agree with this.
	split := options.BytesPerLine >= 8 && len(line) > options.BytesPerLine/2

	groupsPerLine := max(options.BytesPerLine/options.GroupSize, 1)
	leftGroups := min(groupsPerLine/2, len(cells))

	if split && leftGroups > 0 && leftGroups < len(cells) {
		fmt.Fprint(writer, strings.Join(cells[:leftGroups], " "), " | ", strings.Join(cells[leftGroups:], " "))
	} else {
		fmt.Fprint(writer, strings.Join(cells, " "))
	}

	// Pad short lines so the ASCII column stays aligned. Each missing byte
	// is two hex chars, each missing group one separator space, and the
	// divider is two chars wider than the separator it replaces.
	if options.BytesPerLine > len(line) {
		fullGroups := (options.BytesPerLine + options.GroupSize - 1) / options.GroupSize
		curGroups := (len(line) + options.GroupSize - 1) / options.GroupSize

		padding := (options.BytesPerLine-len(line))*2 + (fullGroups - curGroups)
		if options.BytesPerLine >= 8 {
			padding += 2
		}
		if split {
			padding -= 2
		}
		if padding > 0 {
			fmt.Fprint(writer, strings.Repeat(" ", padding))
		}
	}

	if options.ShowASCII {
		fmt.Fprint(writer, " | ")
		if split {
			mid := options.BytesPerLine / 2
			writeASCII(writer, line[:mid], mask[:mid], options)
			fmt.Fprint(writer, " ")
			writeASCII(writer, line[mid:], mask[mid:], options)
		} else {
			writeASCII(writer, line, mask, options)
		}
	}

	if options.ShowPointers && len(line) >= 8 {
		fmt.Fprint(writer, " | ")
		for start := 0; start+8 <= len(line); start += 8 {
			ptr := binary.LittleEndian.Uint64(line[start:])
			if options.MemoryMap.IsValidAddress(ptr) {
				fmt.Fprint(writer, coloransi.Foreground(coloransi.Yellow, fmt.Sprintf("0x%x ", ptr)))
			}
		}
	}

	fmt.Fprintln(writer)
}

func hexCells(line []byte, mask []bool, options Options) []string {
	var cells []string
	var group []string

	for i, b := range line {
		color := options.HexColor
		if b == 0 {
			color = options.ZeroColor
		}

		var cell string
		if mask[i] {
			cell = coloransi.Color(options.HighlightColor, options.HighlightBack, fmt.Sprintf("%02x", b))
		} else {
			cell = coloransi.Foreground(color, fmt.Sprintf("%02x", b))
		}
		group = append(group, cell)

		if (i+1)%options.GroupSize == 0 || i == len(line)-1 {
			cells = append(cells, strings.Join(group, ""))
			group = nil
		}
	}

	return cells
}

func writeASCII(writer io.Writer, line []byte, mask []bool, options Options) {
	for i, b := range line {
		switch {
		case mask[i]:
			fmt.Fprint(writer, coloransi.Color(options.HighlightColor, options.HighlightBack, string(rune(b))))
		case b == 0:
			fmt.Fprint(writer, coloransi.Foreground(options.ZeroColor, "."))
		case !unicode.IsPrint(rune(b)):
			fmt.Fprint(writer, coloransi.Foreground(options.NonPrintableColor, "."))
		default:
			fmt.Fprint(writer, coloransi.Foreground(options.ASCIIColor, string(rune(b))))
		}
	}
}

// highlightMask marks every byte covered by an occurrence of pattern,
// including overlapping ones.
func highlightMask(data, pattern []byte) []bool {
	mask := make([]bool, len(data))
	if len(pattern) == 0 {
		return mask
	}

	for from := 0; from < len(data); {
		i := bytes.Index(data[from:], pattern)
		if i < 0 {
			break
		}
		start := from + i
		for j := start; j < start+len(pattern); j++ {
			mask[j] = true
		}
		from = start + 1
	}
	return mask
}
