package pod

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Field rendering for the dump tooling: one row per struct field with its
// offset, raw value and an optional Stringer annotation. Pointer-shaped
// fields can be checked against a validity callback so dangling remote
// addresses stand out.

type PrintOption func(*printer)

type printer struct {
	out        io.Writer
	isValidPtr func(uint64) bool
}

// WithWriter directs output somewhere other than stdout.
func WithWriter(w io.Writer) PrintOption {
	return func(p *printer) { p.out = w }
}

// WithPointerCheck annotates uint64 fields that look like remote pointers
// with their validity.
func WithPointerCheck(isValid func(uint64) bool) PrintOption {
	return func(p *printer) { p.isValidPtr = isValid }
}

// Print renders v's fields to stdout.
func Print[T any](v T, opts ...PrintOption) {
	p := &printer{out: os.Stdout}
	for _, opt := range opts {
		opt(p)
	}
	p.printStruct(v)
}

// Sprint renders v's fields to a string.
func Sprint[T any](v T, opts ...PrintOption) string {
	var sb strings.Builder
	p := &printer{out: &sb}
	for _, opt := range opts {
		opt(p)
	}
	p.printStruct(v)
	return sb.String()
}

func (p *printer) printStruct(v any) {
	rv := reflect.ValueOf(v)
	rt := rv.Type()

	if rt.Kind() != reflect.Struct {
		fmt.Fprintf(p.out, "%s %v\n",
			coloransi.Foreground(coloransi.ColorTeal, rt.String()),
			formatScalar(rv))
		return
	}

	fmt.Fprintln(p.out, coloransi.Foreground(coloransi.ColorTeal, rt.String()), coloransi.Foreground(coloransi.BrightBlack, fmt.Sprintf("(%d bytes)", rt.Size())))

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)

		offset := coloransi.Foreground(coloransi.BrightBlack, fmt.Sprintf("+0x%04X", field.Offset))
		name := coloransi.Foreground(coloransi.ColorLimeGreen, fmt.Sprintf("%-24s", field.Name))
		value := formatScalar(fv)

		if p.isValidPtr != nil && isPointerShaped(field, fv) {
			addr := fv.Uint()
			switch {
			case addr == 0:
				value += coloransi.Foreground(coloransi.BrightBlack, " ptr:NULL")
			case p.isValidPtr(addr):
				value += coloransi.Foreground(coloransi.ColorLimeGreen, " ptr:ok")
			default:
				value += coloransi.Foreground(coloransi.BrightRed, " ptr:BAD")
			}
		}

		fmt.Fprintf(p.out, "  %s %s %s\n", offset, name, value)
	}
}

// isPointerShaped guesses which fields hold remote addresses: 8-byte
// unsigned fields named like pointers or typed as an address.
func isPointerShaped(field reflect.StructField, fv reflect.Value) bool {
	if fv.Kind() != reflect.Uint64 && fv.Kind() != reflect.Uintptr {
		return false
	}
	name := strings.ToLower(field.Name)
	typeName := field.Type.Name()
	return strings.Contains(name, "ptr") || strings.Contains(name, "addr") ||
		typeName == "ProcessMemoryAddress" || typeName == "Address"
}

func formatScalar(fv reflect.Value) string {
	var raw string
	switch fv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := fv.Uint()
		raw = fmt.Sprintf("%d (0x%X)", u, u)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		raw = fmt.Sprintf("%d", fv.Int())
	case reflect.Bool:
		raw = fmt.Sprintf("%v", fv.Bool())
	case reflect.Float32, reflect.Float64:
		raw = fmt.Sprintf("%g", fv.Float())
	case reflect.Struct:
		// Flat nested structs render inline
		parts := make([]string, 0, fv.NumField())
		for i := 0; i < fv.NumField(); i++ {
			parts = append(parts, formatScalar(fv.Field(i)))
		}
		raw = "{" + strings.Join(parts, ", ") + "}"
	case reflect.Array:
		raw = fmt.Sprintf("[%d]%s", fv.Len(), fv.Type().Elem().Kind())
	default:
		raw = fmt.Sprintf("%v", fv.Interface())
	}

	if s, ok := tryStringer(fv); ok && s != "" {
		return raw + " :: " + s
	}
	return raw
}

func tryStringer(v reflect.Value) (string, bool) {
	if !v.IsValid() {
		return "", false
	}

	// Prefer value receiver (e.g., type Thing uint32; func (t Thing) String() string)
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String(), true
		}
	}

	// Fall back to pointer receiver
	if v.CanAddr() {
		av := v.Addr()
		if av.CanInterface() {
			if s, ok := av.Interface().(fmt.Stringer); ok {
				return s.String(), true
			}
		}
	}
	return "", false
}
