package compile

import "errors"

// Sentinel errors mirroring spec.md §7's error taxonomy. Every phase
// returns its own concrete error (a *token.ErrorList or a sentinel from
// internal/codegen); Run wraps whichever one stopped the compilation in
// the matching sentinel here with fmt.Errorf("%w: ...") so a caller can
// classify a failure with errors.Is without caring which package raised
// it.
var (
	ErrLex        = errors.New("compile: lex error")
	ErrPreprocess = errors.New("compile: preprocess error")
	ErrParse      = errors.New("compile: parse error")
	ErrValidation = errors.New("compile: validation error")
	ErrResolve    = errors.New("compile: resolve error")
	ErrCodegen    = errors.New("compile: codegen error")
	ErrIO         = errors.New("compile: io error")
)
