package expr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Where is a conjunction of conditions: `SAL > 1000 AND ENAME contains "A"`.
type Where struct {
	Conditions []*Condition `@@ ( "AND" @@ )*`
}

// Condition is one field test.
type Condition struct {
	Pos     lexer.Position
	Field   string      `@Ident`
	Null    *NullCheck  `( @@`
	Compare *Comparison `| @@ )`
}

// NullCheck is `IS NULL` or `IS NOT NULL`.
type NullCheck struct {
	Not bool `"IS" @"NOT"? "NULL"`
}

// Comparison is a binary operator and its operand.
type Comparison struct {
	Operator string `( @Op | @( "CONTAINS" | "STARTSWITH" | "ENDSWITH" ) )`
	Value    *Value `@@`
}

// Value is a literal operand; bare words are taken as text.
type Value struct {
	String *string `  @String`
	Number *string `| @Number`
	Word   *string `| @Ident`
}

// OrderBy is a comma-separated sort list: `SAL DESC, ENAME`.
type OrderBy struct {
	Terms []*OrderTerm `@@ ( "," @@ )*`
}

// OrderTerm is one sort key with an optional direction.
type OrderTerm struct {
	Field     string `@Ident`
	Direction string `@( "ASC" | "DESC" )?`
}

// Aggregates is a comma-separated aggregate list: `sum(SAL, COMM) AS total, count()`.
type Aggregates struct {
	Items []*AggregateCall `@@ ( "," @@ )*`
}

// AggregateCall is one aggregate function over zero or more columns.
type AggregateCall struct {
	Pos     lexer.Position
	Func    string   `@( "SUM" | "AVG" | "COUNT" )`
	Columns []string `"(" ( @Ident ( "," @Ident )* )? ")"`
	Alias   string   `( "AS" @Ident )?`
}
