package cpp

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/rosebud32/rosebudc/internal/token"
)

// escapeForStringize is used by the '#' stringize operator: C requires that
// embedded '"' and '\' in the argument's literal text be backslash-escaped,
// but NOT re-escaping a backslash that already precedes a quote it was
// introduced for. That "don't touch what's already escaped" rule needs a
// negative lookbehind, which Go's stdlib regexp cannot express; regexp2 can.
var escapeForStringize = regexp2.MustCompile(`(?<!\\)(["\\])`, regexp2.None)

func stringizeText(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Lit
		if parts[i] == "" {
			parts[i] = t.Kind.String()
		}
	}
	raw := strings.Join(parts, " ")
	escaped, err := escapeForStringize.Replace(raw, `\$1`, -1, -1)
	if err != nil {
		return raw
	}
	return escaped
}

// expander expands macro invocations in a token slice. expanding tracks
// macro names currently being substituted on the active call chain so a
// macro's own name inside its body is left alone (the standard "blue paint"
// rule), preventing infinite recursion for e.g. #define X X+1.
type expander struct {
	macros    *table
	expanding map[string]bool
	line      int
}

func (p *Preprocessor) expand(toks []token.Token, line int) []token.Token {
	ex := &expander{macros: p.macros, expanding: map[string]bool{}, line: line}
	return ex.run(toks)
}

func (ex *expander) run(toks []token.Token) []token.Token {
	var out []token.Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.IDENT {
			out = append(out, t)
			continue
		}
		if t.Lit == "__LINE__" {
			out = append(out, token.Token{Kind: token.NUMBER, Lit: strconv.Itoa(ex.line), Pos: t.Pos})
			continue
		}
		m, ok := ex.macros.lookup(t.Lit)
		if !ok || ex.expanding[t.Lit] {
			out = append(out, t)
			continue
		}
		if !m.FunctionLike {
			ex.expanding[t.Lit] = true
			out = append(out, ex.run(m.Body)...)
			delete(ex.expanding, t.Lit)
			continue
		}
		// function-like: must be followed by '(' to actually invoke; otherwise
		// the bare name passes through unexpanded, as in real cpp.
		if i+1 >= len(toks) || toks[i+1].Kind != token.LPAREN {
			out = append(out, t)
			continue
		}
		args, consumed := splitArgs(toks[i+1:])
		i += consumed
		body := substituteParams(m, args)
		ex.expanding[t.Lit] = true
		out = append(out, ex.run(body)...)
		delete(ex.expanding, t.Lit)
	}
	return out
}

// splitArgs reads a parenthesized, comma-separated argument list starting at
// toks[0] == '(' and returns the per-argument token slices plus how many
// tokens (including both parens) were consumed.
func splitArgs(toks []token.Token) ([][]token.Token, int) {
	depth := 0
	var args [][]token.Token
	var cur []token.Token
	i := 0
	for ; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case token.LPAREN:
			depth++
			if depth == 1 {
				continue
			}
		case token.RPAREN:
			depth--
			if depth == 0 {
				if len(cur) > 0 || len(args) > 0 {
					args = append(args, cur)
				}
				return args, i + 1
			}
		case token.COMMA:
			if depth == 1 {
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		if depth >= 1 {
			cur = append(cur, t)
		}
	}
	return args, i
}

// substituteParams expands one call's macro body given its actual argument
// token lists, handling '#' stringize and '##' token-paste before the result
// is recursively macro-expanded by the caller.
func substituteParams(m *Macro, args [][]token.Token) []token.Token {
	argFor := func(name string) ([]token.Token, bool) {
		idx, ok := m.paramIndex(name)
		if !ok || idx >= len(args) {
			return nil, false
		}
		return args[idx], true
	}

	var out []token.Token
	body := m.Body
	for i := 0; i < len(body); i++ {
		t := body[i]

		if t.Kind == token.HASH && i+1 < len(body) && body[i+1].Kind == token.IDENT {
			if arg, ok := argFor(body[i+1].Lit); ok {
				out = append(out, token.Token{Kind: token.STRING, Lit: stringizeText(arg), Pos: t.Pos})
				i++
				continue
			}
		}

		var cur []token.Token
		if t.Kind == token.IDENT {
			if arg, ok := argFor(t.Lit); ok {
				cur = arg
			} else {
				cur = []token.Token{t}
			}
		} else {
			cur = []token.Token{t}
		}

		if i+1 < len(body) && body[i+1].Kind == token.HASHHASH && len(cur) > 0 {
			// token paste: merge the last token of cur with the first token of
			// whatever follows '##', recursively resolving its own param
			// substitution first.
			i += 2
			var next []token.Token
			if i < len(body) {
				nt := body[i]
				if nt.Kind == token.IDENT {
					if arg, ok := argFor(nt.Lit); ok {
						next = arg
					} else {
						next = []token.Token{nt}
					}
				} else {
					next = []token.Token{nt}
				}
			}
			pasted := cur[len(cur)-1]
			if len(next) > 0 {
				pasted.Lit += next[0].Lit
				out = append(out, cur[:len(cur)-1]...)
				out = append(out, pasted)
				out = append(out, next[1:]...)
			} else {
				out = append(out, cur...)
			}
			continue
		}

		out = append(out, cur...)
	}
	return out
}
