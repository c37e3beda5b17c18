package selftest

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
)

func requireToolchain(t *testing.T) Toolchain {
	t.Helper()
	tc := Toolchain{Compiler: "clang", Objdump: "llvm-objdump"}
	if _, err := exec.LookPath(tc.Compiler); err != nil {
		t.Skipf("RISC-V compiler %q not found on PATH", tc.Compiler)
	}
	if _, err := exec.LookPath(tc.Objdump); err != nil {
		t.Skipf("objdump %q not found on PATH", tc.Objdump)
	}
	return tc
}

func TestRunCrossChecksEveryCompressedCommand(t *testing.T) {
	tc := requireToolchain(t)
	cat, err := catalog.NewRVC()
	require.NoError(t, err)

	reports, err := Run(context.Background(), tc, cat)
	require.NoError(t, err)
	require.NotEmpty(t, reports)
	for _, r := range reports {
		assert.True(t, r.OK, "%s: %v", r.Name, r.Err)
	}
}

func TestAssembleRejectsUnknownCompiler(t *testing.T) {
	tc := Toolchain{Compiler: "/nonexistent/rvcgen-test-compiler", Objdump: "objdump"}
	_, err := tc.Assemble(context.Background(), "nop", true)
	assert.Error(t, err)
}
