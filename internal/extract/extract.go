// Package extract recovers plain text from uploaded documents for use as
// quiz-generation input. The PDF path is a byte-level heuristic, not a
// structural parser: it cannot decode compressed page streams and degrades
// to asking the user to paste the text instead.
package extract

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrUnreadableContent   = errors.New("could not extract readable text from PDF; please copy and paste the text content instead")
	ErrUnsupportedFileType = errors.New("unsupported file type; please use a PDF or text file")
)

// minReadable is the extraction acceptance threshold for PDF passes.
const minReadable = 200

// pdfKeywords are PDF structural/technical tokens filtered out on the first,
// aggressive pass.
var pdfKeywords = []string{
	"obj", "endobj", "stream", "endstream", "xref", "trailer", "startxref",
	"flatedecode", "lzwdecode", "asciihexdecode", "runlengthdecode",
	"font", "page", "catalog", "metadata", "producer", "creator",
}

// pdfKeywordsStrict is the minimal denylist used by the recovery passes.
var pdfKeywordsStrict = []string{"obj", "endobj", "stream", "endstream"}

var textRunRe = regexp.MustCompile(`[A-Za-z0-9\s.,!?;:()\-_]+`)

// FromUpload turns an uploaded file's bytes into best-effort plain text.
// Plain text is returned verbatim; PDFs go through the heuristic passes;
// anything else is returned as text when it decodes to something nonempty.
func FromUpload(filename, mediaType string, data []byte) (string, error) {
	if mediaType == "text/plain" || strings.HasSuffix(filename, ".txt") {
		return string(data), nil
	}
	if mediaType == "application/pdf" {
		return fromPDF(data)
	}
	if len(data) > 0 {
		return string(data), nil
	}
	return "", ErrUnsupportedFileType
}

func fromPDF(data []byte) (string, error) {
	cleaned := collapseWhitespace(stripControl(string(data)))

	// Pass 1: aggressive keyword filtering over whitespace-split tokens.
	if out := filterTokens(cleaned, pdfKeywords, 2); len(out) > minReadable {
		return out, nil
	}
	// Pass 2: recover content lost to over-aggressive filtering.
	if out := filterTokens(cleaned, pdfKeywordsStrict, 1); len(out) > minReadable {
		return out, nil
	}
	// Pass 3: scan the raw bytes for maximal readable runs.
	if out := scanByteRuns(data); len(out) > minReadable {
		return out, nil
	}
	return "", ErrUnreadableContent
}

// stripControl removes the C0 control range (except tab and newline) plus
// DEL and the C1 range.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r < 0x20, r >= 0x7F && r <= 0x9F:
			// drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// filterTokens keeps whitespace-separated tokens that are longer than minLen,
// contain at least one letter, and do not contain any denylisted keyword.
func filterTokens(s string, denylist []string, minLen int) string {
	var kept []string
	for _, tok := range strings.Fields(s) {
		if len(tok) <= minLen {
			continue
		}
		if minLen > 1 && !hasLetter(tok) {
			continue
		}
		if containsKeyword(tok, denylist) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// scanByteRuns renders each byte as a character and extracts maximal runs of
// readable characters, keeping runs long enough to plausibly be prose.
func scanByteRuns(data []byte) string {
	chars := make([]rune, len(data))
	for i, b := range data {
		chars[i] = rune(b)
	}
	var kept []string
	for _, run := range textRunRe.FindAllString(string(chars), -1) {
		if len(run) <= 5 {
			continue
		}
		if !hasLetter(run) {
			continue
		}
		if containsKeyword(run, pdfKeywordsStrict) {
			continue
		}
		kept = append(kept, run)
	}
	return collapseWhitespace(strings.Join(kept, " "))
}

func containsKeyword(tok string, denylist []string) bool {
	low := strings.ToLower(tok)
	for _, kw := range denylist {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
