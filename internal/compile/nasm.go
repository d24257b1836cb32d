package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// RunNASM assembles asmPath per spec.md §6: `nasm -f elf32 <asmPath>` in
// exec mode, or `nasm -f elf32 <asmPath> -o <asmPath>.o` when mode is
// ModeObject. NASM's own exit code is returned unchanged; Run reports a
// non-zero code as an ErrIO error, and the CLI then exits with its generic
// failure status, not with NASM's code.
func RunNASM(ctx context.Context, asmPath string, mode Mode, stderr io.Writer) (int, error) {
	args := []string{"-f", "elf32", asmPath}
	if mode == ModeObject {
		args = append(args, "-o", asmPath+".o")
	}

	cmd := exec.CommandContext(ctx, "nasm", args...)
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("%w: invoking nasm: %s", ErrIO, err)
}
