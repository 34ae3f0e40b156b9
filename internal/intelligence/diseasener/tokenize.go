package diseasener

import (
	"unicode"
	"unicode/utf8"
)

// tokenSpan is one surface token with byte offsets into the original text.
type tokenSpan struct {
	Text  string
	Start int
	End   int
}

// tokenize splits text into word and single-character punctuation tokens,
// preserving byte offsets. Whitespace never appears inside a token.
func tokenize(text string) []tokenSpan {
	var spans []tokenSpan
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if isPunctuation(r) {
			spans = append(spans, tokenSpan{Text: text[i : i+size], Start: i, End: i + size})
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) || isPunctuation(r) {
				break
			}
			i += size
		}
		spans = append(spans, tokenSpan{Text: text[start:i], Start: start, End: i})
	}
	return spans
}

func isPunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// window is a half-open token range [start, end).
type window struct {
	start int
	end   int
}

// buildWindows covers numTokens with windows of at most size tokens. Starts
// advance by stride so consecutive windows overlap; the final window is the
// first one whose end reaches numTokens.
func buildWindows(numTokens, size, stride int) []window {
	if numTokens <= 0 {
		return nil
	}
	if size >= numTokens {
		return []window{{start: 0, end: numTokens}}
	}
	var out []window
	for start := 0; start < numTokens; start += stride {
		end := start + size
		if end >= numTokens {
			out = append(out, window{start: start, end: numTokens})
			break
		}
		out = append(out, window{start: start, end: end})
	}
	return out
}
