// Package kfmt provides formatted console output for the kernel. Output
// produced before the firmware console is registered is captured in a ring
// buffer and replayed once a sink becomes available.
package kfmt

import "io"

// numBufSize defines the buffer size for formatting numbers. It is large
// enough for a 64-bit value in base 8 plus a sign.
const numBufSize = 24

var (
	errNoVerb       = []byte("%!(NOVERB)")
	errMissingArg   = []byte("%!(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// earlyBuffer captures Printf output emitted before the firmware
	// console has been registered via SetOutputSink.
	earlyBuffer ringBuffer

	// outputSink is the io.Writer that receives Printf output. While nil,
	// output is redirected to earlyBuffer.
	outputSink io.Writer
)

// SetOutputSink registers w as the target for Printf output and drains any
// output accumulated in the early ring buffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuffer)
	}
}

// Printf writes a formatted string to the registered output sink. It
// supports a subset of the fmt verbs:
//
//	%s  string or byte slice
//	%c  a single character
//	%d  base-10 integer
//	%x  base-16 integer, lower-case
//	%o  base-8 integer
//	%t  "true" or "false"
//
// An optional decimal width may precede the verb. %d arguments shorter than
// the width are left-padded with spaces; %x and %o arguments are left-padded
// with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes the formatted output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = &earlyBuffer
	}

	var (
		nextArg    int
		blockStart int
	)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}

		if blockStart < i {
			writeString(w, format[blockStart:i])
		}

		// Parse optional width
		width := 0
		i++
		for ; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i >= len(format) {
			w.Write(errNoVerb)
			return
		}

		if nextArg >= len(args) {
			w.Write(errMissingArg)
			blockStart = i + 1
			continue
		}

		switch format[i] {
		case 's':
			fmtString(w, args[nextArg], width)
		case 'c':
			fmtChar(w, args[nextArg])
		case 'd':
			fmtInt(w, args[nextArg], 10, width)
		case 'x':
			fmtInt(w, args[nextArg], 16, width)
		case 'o':
			fmtInt(w, args[nextArg], 8, width)
		case 't':
			fmtBool(w, args[nextArg])
		case '%':
			writeString(w, "%")
			blockStart = i + 1
			continue
		default:
			w.Write(errNoVerb)
			blockStart = i + 1
			continue
		}

		nextArg++
		blockStart = i + 1
	}

	if blockStart < len(format) {
		writeString(w, format[blockStart:])
	}
}

func writeString(w io.Writer, s string) {
	w.Write([]byte(s))
}

func fmtString(w io.Writer, arg interface{}, width int) {
	var s string

	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		w.Write(v)
		return
	case error:
		s = v.Error()
	default:
		w.Write(errWrongArgType)
		return
	}

	for pad := width - len(s); pad > 0; pad-- {
		writeString(w, " ")
	}
	writeString(w, s)
}

func fmtChar(w io.Writer, arg interface{}) {
	buf := [1]byte{}

	switch v := arg.(type) {
	case byte:
		buf[0] = v
	case rune:
		buf[0] = byte(v)
	case int:
		buf[0] = byte(v)
	default:
		w.Write(errWrongArgType)
		return
	}

	w.Write(buf[:])
}

func fmtBool(w io.Writer, arg interface{}) {
	switch v := arg.(type) {
	case bool:
		if v {
			w.Write(trueValue)
		} else {
			w.Write(falseValue)
		}
	default:
		w.Write(errWrongArgType)
	}
}

func fmtInt(w io.Writer, arg interface{}, base, width int) {
	var (
		value    uint64
		negative bool
	)

	switch v := arg.(type) {
	case uint8:
		value = uint64(v)
	case uint16:
		value = uint64(v)
	case uint32:
		value = uint64(v)
	case uint64:
		value = v
	case uint:
		value = uint64(v)
	case uintptr:
		value = uint64(v)
	case int8:
		value, negative = abs(int64(v))
	case int16:
		value, negative = abs(int64(v))
	case int32:
		value, negative = abs(int64(v))
	case int64:
		value, negative = abs(v)
	case int:
		value, negative = abs(int64(v))
	default:
		w.Write(errWrongArgType)
		return
	}

	var (
		buf   [numBufSize]byte
		index = numBufSize
	)

	for {
		index--
		digit := byte(value % uint64(base))
		if digit < 10 {
			buf[index] = '0' + digit
		} else {
			buf[index] = 'a' + digit - 10
		}

		value /= uint64(base)
		if value == 0 {
			break
		}
	}

	if negative {
		index--
		buf[index] = '-'
	}

	pad := byte(' ')
	if base != 10 {
		pad = '0'
	}

	for numBufSize-index < width && index > 0 {
		index--
		buf[index] = pad
	}

	w.Write(buf[index:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}
