package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/commitvm/internal/lang"
)

func texts(tokens []lang.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestTokenizeWhitespaceSplitting(t *testing.T) {
	toks, err := lang.Tokenize("set  $a/b   #3")
	require.NoError(t, err)
	assert.Equal(t, []string{"set", "$a/b", "#3"}, texts(toks))
}

func TestTokenizeEmptyIsZeroTokens(t *testing.T) {
	toks, err := lang.Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestTokenizeSingleQuoteLiteral(t *testing.T) {
	toks, err := lang.Tokenize(`println 'hello $world #1'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"println", "hello $world #1"}, texts(toks))
}

func TestTokenizeDoubleQuoteEscapes(t *testing.T) {
	toks, err := lang.Tokenize(`println "line\nbreak and \"quote\""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"println", `line\nbreak and "quote"`}, texts(toks))
}

func TestTokenizeUnterminatedSingleQuoteFails(t *testing.T) {
	_, err := lang.Tokenize(`println 'unterminated`)
	assert.Error(t, err)
}

func TestTokenizeUnterminatedDoubleQuoteFails(t *testing.T) {
	_, err := lang.Tokenize(`println "unterminated`)
	assert.Error(t, err)
}

func TestTokenizeOffsets(t *testing.T) {
	toks, err := lang.Tokenize("set x #1")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 0, toks[0].Offset)
	assert.Equal(t, 4, toks[1].Offset)
	assert.Equal(t, 6, toks[2].Offset)
}
