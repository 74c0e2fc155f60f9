package filterparser

import "testing"

func TestLexerTokenizesComparisonAndKeywords(t *testing.T) {
	lex := NewLexer("a < 0.82 and b >= 3 or c != 'x'")

	want := []TokenType{
		IDENTIFIER, LESS_THAN, NUMBER, AND,
		IDENTIFIER, GREATER_EQUAL, NUMBER, OR,
		IDENTIFIER, NOT_EQUALS, STRING, EOF,
	}
	for i, wantType := range want {
		tok := lex.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, wantType, tok.Type, tok.Value)
		}
	}
}

func TestLexerCaseInsensitiveKeywords(t *testing.T) {
	lex := NewLexer("a AND b Or c")
	types := []TokenType{IDENTIFIER, AND, IDENTIFIER, OR, IDENTIFIER, EOF}
	for i, wantType := range types {
		tok := lex.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: expected %s, got %s", i, wantType, tok.Type)
		}
	}
}

func TestLexerParensAndLike(t *testing.T) {
	lex := NewLexer("(name like 'foo%')")
	types := []TokenType{LPAREN, IDENTIFIER, LIKE, STRING, RPAREN, EOF}
	for i, wantType := range types {
		tok := lex.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: expected %s, got %s", i, wantType, tok.Type)
		}
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	lex := NewLexer("a & b")
	_ = lex.NextToken() // a
	tok := lex.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for '&', got %s", tok.Type)
	}
}
