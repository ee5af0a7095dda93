package morse

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/dgnsrekt/morse/internal/text"
	"github.com/samber/lo"
)

// codes maps each supported character to its dot/dash form.
var codes = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", '?': "..--..", '\'': ".----.",
	'!': "-.-.--", '/': "-..-.", '(': "-.--.", ')': "-.--.-",
	'&': ".-...", ':': "---...", ';': "-.-.-.", '=': "-...-",
	'+': ".-.-.", '-': "-....-", '_': "..--.-", '"': ".-..-.",
	'$': "...-..-", '@': ".--.-.",
}

var (
	lookup        = make(map[rune][]Symbol, len(codes))
	fromNotation  = lo.Invert(codes)
	sortedLetters []rune
)

func init() {
	for r, code := range codes {
		symbols, err := parseCode(code)
		if err != nil {
			panic(fmt.Sprintf("morse: bad table entry for %q: %v", r, err))
		}
		lookup[r] = symbols
	}
	sortedLetters = lo.Keys(codes)
	slices.Sort(sortedLetters)
}

// parseCode converts a dot/dash string into tone symbols.
func parseCode(code string) ([]Symbol, error) {
	symbols := make([]Symbol, 0, len(code))
	for _, c := range code {
		switch c {
		case '.':
			symbols = append(symbols, Short)
		case '-':
			symbols = append(symbols, Long)
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidNotation, c)
		}
	}
	return symbols, nil
}

// Alphabet returns every supported character except space, in code point
// order.
func Alphabet() []rune {
	return slices.Clone(sortedLetters)
}

// Code returns the dot/dash form of r.
func Code(r rune) (string, bool) {
	code, ok := codes[unicode.ToUpper(r)]
	return code, ok
}

// Supported reports whether r can be encoded.
func Supported(r rune) bool {
	if r == ' ' {
		return true
	}
	_, ok := codes[unicode.ToUpper(r)]
	return ok
}

// Lookup returns the tone symbols of r without any gaps.
func Lookup(r rune) ([]Symbol, bool) {
	symbols, ok := lookup[unicode.ToUpper(r)]
	if !ok {
		return nil, false
	}
	return slices.Clone(symbols), true
}

// EncodeRune returns the symbol sequence for one character: the tone symbols
// separated by IntraGap and followed by an InterGap. A space encodes as a
// single WordGap.
func EncodeRune(r rune) ([]Symbol, error) {
	if r == ' ' {
		return []Symbol{WordGap}, nil
	}

	tones, ok := lookup[unicode.ToUpper(r)]
	if !ok {
		return nil, &EncodeError{Rune: r}
	}

	symbols := make([]Symbol, 0, 2*len(tones))
	for i, s := range tones {
		if i > 0 {
			symbols = append(symbols, IntraGap)
		}
		symbols = append(symbols, s)
	}
	return append(symbols, InterGap), nil
}

// Encode returns the symbol sequence for text. It fails on the first
// character outside the alphabet.
func Encode(s string) ([]Symbol, error) {
	var symbols []Symbol
	position := 0
	for _, r := range s {
		encoded, err := EncodeRune(r)
		if err != nil {
			return nil, &EncodeError{Rune: r, Position: position}
		}
		symbols = append(symbols, encoded...)
		position++
	}
	return symbols, nil
}

// Sanitize prepares arbitrary text for Encode: diacritics are folded, any
// whitespace becomes a single space and unsupported characters are dropped.
func Sanitize(s string) string {
	folded := text.Fold(s)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		r = unicode.ToUpper(r)
		if _, ok := codes[r]; !ok {
			continue
		}
		if space {
			b.WriteRune(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Notation renders symbols in dot/dash form with a space between characters
// and a slash between words.
func Notation(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		switch s {
		case Short:
			b.WriteByte('.')
		case Long:
			b.WriteByte('-')
		case InterGap:
			b.WriteByte(' ')
		case WordGap:
			b.WriteString("/ ")
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseNotation converts dot/dash text back into a symbol sequence with the
// same gaps Encode would produce.
func ParseNotation(s string) ([]Symbol, error) {
	var symbols []Symbol
	for wi, word := range strings.Split(s, "/") {
		if wi > 0 {
			symbols = append(symbols, WordGap)
		}
		for _, letter := range strings.Fields(word) {
			tones, err := parseCode(letter)
			if err != nil {
				return nil, err
			}
			for i, t := range tones {
				if i > 0 {
					symbols = append(symbols, IntraGap)
				}
				symbols = append(symbols, t)
			}
			symbols = append(symbols, InterGap)
		}
	}
	return symbols, nil
}

// Decode converts dot/dash text into characters. Letters are separated by
// whitespace and words by a slash.
func Decode(notation string) (string, error) {
	var b strings.Builder
	for wi, word := range strings.Split(notation, "/") {
		letters := strings.Fields(word)
		if len(letters) == 0 {
			continue
		}
		if wi > 0 && b.Len() > 0 {
			b.WriteRune(' ')
		}
		for _, letter := range letters {
			r, ok := fromNotation[letter]
			if !ok {
				return "", fmt.Errorf("%w: unknown code %q", ErrInvalidNotation, letter)
			}
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
