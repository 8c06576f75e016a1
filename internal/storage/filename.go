package storage

import (
	"bytes"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"
)

const pdfMIME = "application/pdf"

// SanitizeFilename reduces a client supplied name to a safe flat filename:
// ASCII only, no path separators, whitespace runs collapsed to "_", only
// [A-Za-z0-9_.-] kept, leading and trailing dots and underscores trimmed.
// It returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	var ascii strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		ascii.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(ascii.String()), "_")

	var out strings.Builder
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out.WriteRune(r)
		case r == '_' || r == '.' || r == '-':
			out.WriteRune(r)
		}
	}
	return strings.Trim(out.String(), "._")
}

// HasPDFExtension reports whether name ends in ".pdf", ignoring case.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// SniffPDF inspects the head of body and reports whether it is a PDF. The
// returned reader replays the inspected bytes followed by the rest of body.
func SniffPDF(body io.Reader) (io.Reader, bool, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, false, err
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	return io.MultiReader(bytes.NewReader(head), body), detected.Is(pdfMIME), nil
}
