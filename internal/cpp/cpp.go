// Package cpp implements the preprocessor stage: macro definition and
// expansion, conditional compilation and #include, built directly on top of
// the token stream internal/scanner produces — no separate directive token
// kind, the same way the original compiler's preprocessor.c consumes the
// lexer's token vector and recognizes '#' at the start of a line.
//
// #if/#elif condition evaluation is delegated to internal/exprengine, the
// shared generic expression engine also used by internal/parser, per
// spec.md §4.4.
package cpp

import (
	"fmt"
	"strings"

	"github.com/rosebud32/rosebudc/internal/cpp/staticinclude"
	"github.com/rosebud32/rosebudc/internal/scanner"
	"github.com/rosebud32/rosebudc/internal/token"
)

// IncludeResolver locates the source text for an #include target. angled
// reports whether the directive used <...> or "...": spec.md §6's include
// search path applies uniformly to both forms (it draws no quoted/angled
// distinction), so a resolver is free to ignore angled entirely.
type IncludeResolver interface {
	Resolve(name string, angled bool) (src string, ok bool)
}

// Preprocessor runs one translation unit's worth of macro/conditional
// processing. A fresh Preprocessor is created per compile_process; macro
// state does not persist across files, matching the original compiler's
// single-pass, single-file design (spec.md describes no cross-unit linking
// stage).
type Preprocessor struct {
	macros   *table
	fset     *token.FileSet
	resolver IncludeResolver
	errs     token.ErrorList

	includeDepth int
}

const maxIncludeDepth = 16

// New creates a Preprocessor. resolver may be nil if the translation unit is
// known not to use #include.
func New(fset *token.FileSet, resolver IncludeResolver) *Preprocessor {
	p := &Preprocessor{macros: newTable(), fset: fset, resolver: resolver}
	return p
}

type condFrame struct {
	taking    bool // true if this branch's tokens should be emitted
	everTaken bool // true once some branch in this #if..#endif chain has taken
	sawElse   bool
}

func (p *Preprocessor) active(stack []condFrame) bool {
	for _, f := range stack {
		if !f.taking {
			return false
		}
	}
	return true
}

// Process runs the preprocessor over toks (as produced by internal/scanner
// for filename) and returns the resulting token stream, with all directives
// consumed and all surviving text macro-expanded.
func (p *Preprocessor) Process(filename string, toks []token.Token) ([]token.Token, error) {
	out, err := p.process(filename, toks)
	if err != nil {
		return out, err
	}
	if len(p.errs) > 0 {
		return out, p.errs
	}
	return out, nil
}

func (p *Preprocessor) process(filename string, toks []token.Token) ([]token.Token, error) {
	lines := groupLines(p.fset, toks)

	var out []token.Token
	var stack []condFrame

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		lineNo := p.fset.Position(line[0].Pos).Line

		if line[0].Kind == token.HASH {
			if len(line) < 2 || line[1].Kind != token.IDENT {
				p.error(line[0], "expected preprocessor directive name")
				continue
			}
			directive := line[1].Lit
			rest := line[2:]

			switch directive {
			case "if":
				taking := p.active(stack) && p.evalCond(rest, lineNo) != 0
				stack = append(stack, condFrame{taking: taking, everTaken: taking})
			case "ifdef":
				name := identName(rest)
				taking := p.active(stack) && p.macros.defined(name)
				stack = append(stack, condFrame{taking: taking, everTaken: taking})
			case "ifndef":
				name := identName(rest)
				taking := p.active(stack) && !p.macros.defined(name)
				stack = append(stack, condFrame{taking: taking, everTaken: taking})
			case "elif":
				if len(stack) == 0 {
					p.error(line[0], "#elif without #if")
					continue
				}
				top := &stack[len(stack)-1]
				parentActive := p.active(stack[:len(stack)-1])
				if top.sawElse {
					p.error(line[0], "#elif after #else")
				}
				if parentActive && !top.everTaken {
					top.taking = p.evalCond(rest, lineNo) != 0
					top.everTaken = top.taking
				} else {
					top.taking = false
				}
			case "else":
				if len(stack) == 0 {
					p.error(line[0], "#else without #if")
					continue
				}
				top := &stack[len(stack)-1]
				parentActive := p.active(stack[:len(stack)-1])
				if top.sawElse {
					p.error(line[0], "duplicate #else")
				}
				top.sawElse = true
				top.taking = parentActive && !top.everTaken
				top.everTaken = top.everTaken || top.taking
			case "endif":
				if len(stack) == 0 {
					p.error(line[0], "#endif without #if")
					continue
				}
				stack = stack[:len(stack)-1]
			default:
				if !p.active(stack) {
					continue
				}
				switch directive {
				case "define":
					p.handleDefine(rest, lineNo)
				case "undef":
					p.macros.undef(identName(rest))
				case "include":
					inc, err := p.handleInclude(rest, lineNo)
					if err != nil {
						p.error(line[0], err.Error())
					} else {
						out = append(out, inc...)
					}
				case "error":
					p.error(line[0], "#error "+textOf(rest))
				case "warning":
					// Warnings are non-fatal: the directive is accepted and
					// ignored (nothing is recorded or printed) and
					// compilation continues.
				default:
					p.error(line[0], fmt.Sprintf("unknown preprocessor directive #%s", directive))
				}
			}
			continue
		}

		if !p.active(stack) {
			continue
		}
		out = append(out, p.expand(line, lineNo)...)
	}

	if len(stack) > 0 {
		p.error(toks[len(toks)-1], "unterminated #if")
	}

	out = append(out, token.Token{Kind: token.EOF})
	return out, nil
}

func (p *Preprocessor) error(tok token.Token, msg string) {
	p.errs.Add(p.fset.Position(tok.Pos), msg)
}

func (p *Preprocessor) evalCond(rest []token.Token, line int) int64 {
	expanded := p.expandForIf(rest, line)
	return evalIf(p.macros, expanded, func(tok token.Token, msg string) {
		p.error(tok, "#if: "+msg)
	})
}

// expandForIf macro-expands a #if/#elif condition like any other line,
// except the operand of "defined" (bare or parenthesized) is left untouched:
// the C standard requires `defined X` to test whether X is a macro name,
// not to expand X first.
func (p *Preprocessor) expandForIf(rest []token.Token, line int) []token.Token {
	var out []token.Token
	var run []token.Token
	flush := func() {
		if len(run) > 0 {
			out = append(out, p.expand(run, line)...)
			run = nil
		}
	}

	for i := 0; i < len(rest); i++ {
		t := rest[i]
		if t.Kind == token.IDENT && t.Lit == "defined" {
			flush()
			out = append(out, t)
			if i+1 < len(rest) && rest[i+1].Kind == token.LPAREN {
				depth := 0
				for i++; i < len(rest); i++ {
					out = append(out, rest[i])
					if rest[i].Kind == token.LPAREN {
						depth++
					} else if rest[i].Kind == token.RPAREN {
						depth--
						if depth == 0 {
							break
						}
					}
				}
			} else if i+1 < len(rest) {
				i++
				out = append(out, rest[i])
			}
			continue
		}
		run = append(run, t)
	}
	flush()
	return out
}

func identName(rest []token.Token) string {
	if len(rest) == 0 {
		return ""
	}
	return rest[0].Lit
}

func textOf(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Lit
	}
	return strings.Join(parts, " ")
}

func (p *Preprocessor) handleDefine(rest []token.Token, line int) {
	if len(rest) == 0 || rest[0].Kind != token.IDENT {
		p.error(token.Token{}, "#define requires a name")
		return
	}
	name := rest[0].Lit
	m := &Macro{Name: name, DefinedAtLine: line}

	body := rest[1:]
	if len(body) > 0 && body[0].Kind == token.LPAREN {
		m.FunctionLike = true
		i := 1
		for i < len(body) && body[i].Kind != token.RPAREN {
			if body[i].Kind == token.IDENT {
				m.Params = append(m.Params, body[i].Lit)
			}
			i++
		}
		if i < len(body) {
			i++
		}
		body = body[i:]
	}
	m.Body = body
	p.macros.define(m)
}

func (p *Preprocessor) handleInclude(rest []token.Token, line int) ([]token.Token, error) {
	name, angled, ok := includeTarget(rest)
	if !ok {
		return nil, fmt.Errorf("malformed #include")
	}

	if src, ok := staticinclude.Lookup(name); ok {
		return p.includeSource(name, src, line)
	}

	if p.resolver == nil {
		return nil, fmt.Errorf("#include %q: no include resolver configured", name)
	}
	src, ok := p.resolver.Resolve(name, angled)
	if !ok {
		return nil, fmt.Errorf("#include %q: file not found", name)
	}
	return p.includeSource(name, src, line)
}

func (p *Preprocessor) includeSource(name, src string, line int) ([]token.Token, error) {
	if p.includeDepth >= maxIncludeDepth {
		return nil, fmt.Errorf("#include %q: nesting too deep (possible cycle)", name)
	}
	p.includeDepth++
	defer func() { p.includeDepth-- }()

	toks, err := scanner.ScanFile(p.fset, name, src)
	if err != nil {
		return nil, err
	}
	inc, err := p.process(name, toks)
	if err != nil {
		return nil, err
	}
	// process always terminates its result with a synthetic EOF; strip it
	// here since inc is being spliced into the middle of the including
	// file's own token stream, not returned as a final result.
	if n := len(inc); n > 0 && inc[n-1].Kind == token.EOF {
		inc = inc[:n-1]
	}
	return inc, nil
}

// includeTarget reads the "name" or <name> form and whether it was angled.
func includeTarget(rest []token.Token) (name string, angled bool, ok bool) {
	if len(rest) == 0 {
		return "", false, false
	}
	if rest[0].Kind == token.STRING {
		return rest[0].Lit, false, true
	}
	if rest[0].Kind == token.LT {
		var b strings.Builder
		for _, t := range rest[1:] {
			if t.Kind == token.GT {
				return b.String(), true, true
			}
			b.WriteString(t.Lit)
		}
	}
	return "", false, false
}

// groupLines splits a token stream (sans trailing EOF) into physical-line
// groups using FileSet position info, replacing the explicit newline token
// the original lexer emits.
func groupLines(fset *token.FileSet, toks []token.Token) [][]token.Token {
	var lines [][]token.Token
	var cur []token.Token
	curLine := -1
	for _, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		line := fset.Position(t.Pos).Line
		if curLine == -1 {
			curLine = line
		}
		if line != curLine {
			lines = append(lines, cur)
			cur = nil
			curLine = line
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
