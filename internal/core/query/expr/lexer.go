package expr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ExprLexer defines the token types of the command-line query expressions.
var ExprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Op", Pattern: `<>|!=|>=|<=|=|>|<`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_$#]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
