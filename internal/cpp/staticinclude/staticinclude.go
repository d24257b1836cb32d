// Package staticinclude is an in-process registry of built-in header
// bodies, ported from the original compiler's
// preprocessor/static_include.c + preprocessor/static_includes/stdarg.c:
// rather than reading these off disk, #include <stdarg.h> (and friends) is
// satisfied by source text baked into the binary.
package staticinclude

var headers = map[string]string{
	"stdarg.h": stdargH,
	"stddef.h": stddefH,
}

// Lookup returns the synthetic source for a built-in header name (as it
// would appear between <...> or "..."), and whether one is registered.
func Lookup(name string) (string, bool) {
	src, ok := headers[name]
	return src, ok
}

// stdargH declares the varargs machinery the code generator's native
// function hooks (va_start/__builtin_va_arg/va_end) implement directly
// rather than by emitting a call, per spec.md §3's varargs supplement.
// va_arg is a macro, not a function, because it takes a type name as its
// second argument; sizeof(type) is folded to a constant by the parser
// before __builtin_va_arg ever sees it, matching the original compiler's
// rc_includes/stdarg.h.
const stdargH = `
typedef char* va_list;

void va_start(va_list list, int last_fixed_arg);
int __builtin_va_arg(va_list list, int size);
void va_end(va_list list);

#define va_arg(ap, type) __builtin_va_arg(ap, sizeof(type))
`

const stddefH = `
typedef unsigned int size_t;
typedef int ptrdiff_t;
`
