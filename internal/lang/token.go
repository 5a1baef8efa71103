package lang

import (
	"strings"

	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

// tokenizer performs POSIX-ish shell word splitting over a single commit
// message: whitespace separates tokens, single quotes are fully literal,
// inside double quotes a backslash escapes $, `, " and \ (and is kept as a
// literal backslash before any other character), and an unterminated quote
// is a parse error.
type tokenizer struct {
	src []byte
	pos int
}

func newTokenizer(src string) *tokenizer {
	return &tokenizer{src: []byte(src)}
}

func (t *tokenizer) currentChar() byte {
	if t.pos >= len(t.src) {
		return 0
	}
	return t.src[t.pos]
}

func (t *tokenizer) advance() {
	t.pos++
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.src) && isSpace(t.currentChar()) {
		t.advance()
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Token is one shell word along with the byte offset it started at in the
// original message, used to anchor ParseError locations.
type Token struct {
	Text   string
	Offset int
}

// Tokenize splits message into shell words. An empty or whitespace-only
// message yields zero tokens.
func Tokenize(message string) ([]Token, error) {
	t := newTokenizer(message)
	var tokens []Token

	for {
		t.skipWhitespace()
		if t.pos >= len(t.src) {
			break
		}

		var b strings.Builder
		start := t.pos
		for t.pos < len(t.src) && !isSpace(t.currentChar()) {
			switch t.currentChar() {
			case '\'':
				if err := t.readSingleQuoted(&b, start); err != nil {
					return nil, err
				}
			case '"':
				if err := t.readDoubleQuoted(&b, start); err != nil {
					return nil, err
				}
			case '\\':
				t.advance()
				if t.pos >= len(t.src) {
					return nil, vmerrors.New(vmerrors.ParseError, "trailing backslash at offset %d", start)
				}
				b.WriteByte(t.currentChar())
				t.advance()
			default:
				b.WriteByte(t.currentChar())
				t.advance()
			}
		}
		tokens = append(tokens, Token{Text: b.String(), Offset: start})
	}

	return tokens, nil
}

func (t *tokenizer) readSingleQuoted(b *strings.Builder, start int) error {
	t.advance() // opening quote
	for {
		if t.pos >= len(t.src) {
			return vmerrors.New(vmerrors.ParseError, "unterminated single-quoted string starting at offset %d", start)
		}
		if t.currentChar() == '\'' {
			t.advance()
			return nil
		}
		b.WriteByte(t.currentChar())
		t.advance()
	}
}

func (t *tokenizer) readDoubleQuoted(b *strings.Builder, start int) error {
	t.advance() // opening quote
	for {
		if t.pos >= len(t.src) {
			return vmerrors.New(vmerrors.ParseError, "unterminated double-quoted string starting at offset %d", start)
		}
		c := t.currentChar()
		if c == '"' {
			t.advance()
			return nil
		}
		if c == '\\' {
			t.advance()
			if t.pos >= len(t.src) {
				return vmerrors.New(vmerrors.ParseError, "unterminated double-quoted string starting at offset %d", start)
			}
			switch next := t.currentChar(); next {
			case '$', '`', '"', '\\':
				b.WriteByte(next)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			t.advance()
			continue
		}
		b.WriteByte(c)
		t.advance()
	}
}
