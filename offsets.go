package medspan

import "unicode/utf8"

// Offsets on the public Entity type are 1-based inclusive rune positions.
// Everything internal (token labels, regex matches) arrives as 0-based
// half-open spans, in runes or bytes; the helpers here are the only code
// that crosses between conventions.

// runeLen returns the length of s in runes.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// sliceRunes returns the substring of s covering the 1-based inclusive rune
// range [start, stop]. Out-of-range requests return "".
func sliceRunes(s string, start, stop int) string {
	if start < 1 || stop < start {
		return ""
	}
	byteStart := -1
	byteEnd := len(s)
	pos := 0
	for bi := range s {
		pos++
		if pos == start {
			byteStart = bi
		}
		if pos == stop+1 {
			byteEnd = bi
			break
		}
	}
	if byteStart < 0 || pos < start {
		return ""
	}
	return s[byteStart:byteEnd]
}

// byteToRune converts a byte offset into s to a 0-based rune offset. The
// byte offset must sit on a rune boundary, which regexp match indexes
// always do.
func byteToRune(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff > len(s) {
		byteOff = len(s)
	}
	return utf8.RuneCountInString(s[:byteOff])
}
