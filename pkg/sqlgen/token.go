package sqlgen

import (
	"strings"
	"unicode"
)

// Kind classifies a lexical token.
type Kind int

const (
	KindIdent Kind = iota
	KindNumber
	KindString
	KindSymbol
)

// Token is one lexical unit of a SQL statement. Start and End are byte
// offsets into the original input, so callers can splice replacements without
// re-rendering the whole statement.
type Token struct {
	Kind   Kind
	Text   string // unquoted content for idents and strings
	Quoted bool   // backtick-quoted identifier
	Start  int
	End    int
}

// Keyword reports whether the token is the given bare keyword,
// case-insensitively.
func (t Token) Keyword(kw string) bool {
	return t.Kind == KindIdent && !t.Quoted && strings.EqualFold(t.Text, kw)
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Tokenize splits a SQL statement into tokens. It understands backtick-quoted
// identifiers and single-quoted string literals with doubled-quote escapes,
// which is the subset the model is constrained to emit.
func Tokenize(input string) []Token {
	var toks []Token
	runes := []rune(input)
	// byte offset per rune index, plus final length
	offs := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offs[i] = pos
		pos += len(string(r))
	}
	offs[len(runes)] = pos

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '`':
			j := i + 1
			for j < len(runes) && runes[j] != '`' {
				j++
			}
			toks = append(toks, Token{
				Kind:   KindIdent,
				Text:   string(runes[i+1 : j]),
				Quoted: true,
				Start:  offs[i],
				End:    offs[min(j+1, len(runes))],
			})
			i = j + 1
		case r == '\'':
			j := i + 1
			var sb strings.Builder
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						sb.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				sb.WriteRune(runes[j])
				j++
			}
			toks = append(toks, Token{
				Kind:  KindString,
				Text:  sb.String(),
				Start: offs[i],
				End:   offs[min(j+1, len(runes))],
			})
			i = j + 1
		case isIdentStart(r):
			j := i + 1
			for j < len(runes) && isIdentRune(runes[j]) {
				j++
			}
			toks = append(toks, Token{
				Kind:  KindIdent,
				Text:  string(runes[i:j]),
				Start: offs[i],
				End:   offs[j],
			})
			i = j
		case unicode.IsDigit(r):
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			toks = append(toks, Token{
				Kind:  KindNumber,
				Text:  string(runes[i:j]),
				Start: offs[i],
				End:   offs[j],
			})
			i = j
		default:
			text := string(r)
			if i+1 < len(runes) {
				two := string(runes[i : i+2])
				switch two {
				case "<=", ">=", "<>", "!=":
					text = two
				}
			}
			toks = append(toks, Token{
				Kind:  KindSymbol,
				Text:  text,
				Start: offs[i],
				End:   offs[i+len([]rune(text))],
			})
			i += len([]rune(text))
		}
	}
	return toks
}

func hasKeyword(toks []Token, kw string) bool {
	for _, t := range toks {
		if t.Keyword(kw) {
			return true
		}
	}
	return false
}

// fromTargets collects the identifier immediately following each FROM or JOIN
// keyword. Subqueries contribute no target (the next token is a parenthesis).
func fromTargets(toks []Token) []Token {
	var out []Token
	for i := 0; i < len(toks)-1; i++ {
		if toks[i].Keyword("from") || toks[i].Keyword("join") {
			next := toks[i+1]
			if next.Kind == KindIdent {
				out = append(out, next)
			}
		}
	}
	return out
}

// hasDateFilter reports whether any identifier after the first WHERE looks
// like a date column.
func hasDateFilter(toks []Token) bool {
	seen := false
	for _, t := range toks {
		if t.Keyword("where") {
			seen = true
			continue
		}
		if !seen || t.Kind != KindIdent {
			continue
		}
		if strings.Contains(strings.ToLower(t.Text), "fec") {
			return true
		}
	}
	return false
}

// isCountQuery detects a COUNT(*) aggregate anywhere in the statement.
func isCountQuery(toks []Token) bool {
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].Keyword("count") &&
			toks[i+1].Kind == KindSymbol && toks[i+1].Text == "(" &&
			toks[i+2].Kind == KindSymbol && toks[i+2].Text == "*" {
			return true
		}
	}
	return false
}

// selectItems returns the comma-separated select-list items, each as a token
// slice, for a statement of the form SELECT <list> FROM ... Returns nil when
// the shape cannot be determined.
func selectItems(toks []Token) [][]Token {
	if len(toks) == 0 || !toks[0].Keyword("select") {
		return nil
	}
	end := -1
	depth := 0
	for i := 1; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == KindSymbol {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		if depth == 0 && t.Keyword("from") {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}
	var items [][]Token
	var cur []Token
	depth = 0
	for _, t := range toks[1:end] {
		if t.Kind == KindSymbol {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			case ",":
				if depth == 0 {
					items = append(items, cur)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		items = append(items, cur)
	}
	return items
}
