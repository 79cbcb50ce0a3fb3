package dbf

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	windowsCodePage = regexp.MustCompile(`^(?:cp|windows-?|ansi ?)?(1[25]\d\d|874)$`)
	isoCodePage     = regexp.MustCompile(`^(?:iso-?)?8859-?(\d{1,2})$`)
)

// Decoder returns the text decoder named by a .cpg file.
//
// Common .cpg spellings ("UTF-8", "1252", "CP1252", "ANSI 1251", "88591",
// "ISO-8859-1") are normalized before lookup; anything unrecognized is UTF-8.
func Decoder(cpg []byte) *encoding.Decoder {
	name := normalizeCodePage(string(cpg))
	if name == "" {
		return unicode.UTF8.NewDecoder()
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return unicode.UTF8.NewDecoder()
	}
	return enc.NewDecoder()
}

func normalizeCodePage(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}
	if m := windowsCodePage.FindStringSubmatch(name); m != nil {
		return "windows-" + m[1]
	}
	if m := isoCodePage.FindStringSubmatch(name); m != nil {
		return "iso-8859-" + m[1]
	}
	return name
}

// decodeText decodes raw bytes, keeping them as-is when the decoder rejects them
func decodeText(dec *encoding.Decoder, raw []byte) string {
	out, err := dec.Bytes(raw)
	if err != nil || !utf8.Valid(out) {
		return string(raw)
	}
	return string(out)
}
