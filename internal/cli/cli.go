// Package cli implements the compiler's command-line front end
// (spec.md §6), grounded on the teacher's internal/maincmd: a Cmd struct
// whose exported fields carry `flag:"..."` tags, parsed by mainer.Parser,
// dispatched by Main into an os.Exit-ready mainer.ExitCode.
//
// Unlike the teacher's maincmd.Cmd, there is no <command> word to dispatch
// by reflection: spec.md §6's CLI shape is purely positional
// (`compiler [INPUT] [OUTPUT] [MODE]`), so Main calls compile.Run directly
// instead of routing through a buildCmds-style method table.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/rosebud32/rosebudc/internal/compile"
)

const binName = "rosebudc"

var shortUsage = fmt.Sprintf(`usage: %s [<option>...] [INPUT] [OUTPUT] [MODE]
Run '%[1]s --help' for details.
`, binName)

var longUsage = fmt.Sprintf(`usage: %s [<option>...] [INPUT] [OUTPUT] [MODE]
       %[1]s -h|--help
       %[1]s -v|--version

Compiles a C-subset source file to 32-bit NASM assembly and, unless --S is
given, assembles it with nasm.

INPUT defaults to ./test.c, OUTPUT to ./test, MODE to exec.
MODE is one of: exec, object.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -o --output                Alternative spelling of the OUTPUT argument.
       --mode                    Alternative spelling of the MODE argument.
       --S                       Stop after emitting assembly; never invoke nasm.
       --tokens                  Also print the token stream to stdout;
                                 compilation continues.
       --ast                     Also print the parsed AST (and a sorted symbol
                                 dump) to stdout; compilation continues.
`, binName)

// Cmd holds one invocation's parsed flags and positional arguments.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Output    string `flag:"o,output"`
	Mode      string `flag:"mode"`
	StopAtAsm bool   `flag:"S"`
	Tokens    bool   `flag:"tokens"`
	AST       bool   `flag:"ast"`

	args []string
}

func (c *Cmd) SetArgs(args []string)         { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

// Validate checks the positional INPUT/OUTPUT/MODE arguments, applying
// spec.md §6's defaults for whichever ones are missing.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 3 {
		return fmt.Errorf("too many arguments: expected at most [INPUT] [OUTPUT] [MODE]")
	}
	if len(c.args) >= 3 {
		if c.Mode != "" && c.Mode != c.args[2] {
			return fmt.Errorf("MODE given both positionally (%q) and as --mode (%q)", c.args[2], c.Mode)
		}
		c.Mode = c.args[2]
	}
	if _, err := compile.ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

func (c *Cmd) input() string {
	if len(c.args) >= 1 {
		return c.args[0]
	}
	return "./test.c"
}

func (c *Cmd) output() string {
	if len(c.args) >= 2 {
		return c.args[1]
	}
	if c.Output != "" {
		return c.Output
	}
	return "./test"
}

// Main parses args against a fresh Cmd and runs the compiler, returning an
// exit code ready for os.Exit. SIGINT cancels the in-flight compile_process
// (in practice, only the nasm subprocess observes this) the same way
// mainer.CancelOnSignal wires it for the teacher's CLI.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	mode, _ := compile.ParseMode(c.Mode)
	opts := compile.Options{
		Input:    c.input(),
		Output:   c.output(),
		Mode:     mode,
		SkipNASM: c.StopAtAsm,
	}
	if c.Tokens {
		opts.Tokens = stdio.Stdout
	}
	if c.AST {
		opts.AST = stdio.Stdout
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if _, err := compile.Run(ctx, opts, stdio.Stderr); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	if opts.SkipNASM || opts.Tokens != nil || opts.AST != nil {
		return mainer.Success
	}
	fmt.Fprintf(stdio.Stdout, "wrote %s\n", opts.Output)
	return mainer.Success
}
