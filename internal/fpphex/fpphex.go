/*
   Hex formatting for FPP words and accumulators, as shown by the
   diagnostic console and log traces.

   Modeled on a mainframe emulator's hex-dump utility package:
   FormatHalf is kept nearly verbatim (it already does exactly what a
   16-bit FPP word needs), the byte/decimal/displacement formatters
   built for instruction traces in that format are dropped since the
   FP11 has no analogous operand forms, and FormatNumber is added for
   the four-word Number layout.
*/

package fpphex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatHalf appends each 16-bit word in half as 4 hex digits, optionally
// space-separated.
func FormatHalf(str *strings.Builder, space bool, half []uint16) {
	for _, word := range half {
		shift := 12
		for range 4 {
			str.WriteByte(hexMap[(word>>shift)&0xf])
			shift -= 4
		}
		if space {
			str.WriteByte(' ')
		}
	}
	if !space {
		str.WriteByte(' ')
	}
}

// FormatNumber renders a 4-word FPP value as space-separated hex words,
// e.g. "4080 0000 0000 0000".
func FormatNumber(words [4]uint16) string {
	var b strings.Builder
	FormatHalf(&b, true, words[:])
	return strings.TrimRight(b.String(), " ")
}
