// Command rvcgen generates a RISC-V "C" extension instruction decompressor:
// given the built-in RV32I/RV32C catalog, it can self-test its encoder
// against an external assembler, emit a Verilog decompressor module, and
// emit a C++ test-vector file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
	"github.com/kestrelrv/rvcgen/pkg/emit"
	"github.com/kestrelrv/rvcgen/pkg/opcode"
	"github.com/kestrelrv/rvcgen/pkg/selector"
	"github.com/kestrelrv/rvcgen/pkg/selftest"
)

func main() {
	var doSelfTest bool
	var compiler, objdump string
	var decompOut, testCppOut string

	rootCmd := &cobra.Command{
		Use:   "rvcgen",
		Short: "Generate a RISC-V C-extension instruction decompressor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.NewRVC()
			if err != nil {
				return fmt.Errorf("building catalog: %w", err)
			}

			if doSelfTest {
				if compiler == "" || objdump == "" {
					return fmt.Errorf("--do-self-test requires both --compiler and --objdump")
				}
				if err := runSelfTest(cmd.Context(), selftest.Toolchain{Compiler: compiler, Objdump: objdump}, cat); err != nil {
					return err
				}
			}

			if decompOut != "" {
				if err := writeDecompressor(cat, decompOut); err != nil {
					return err
				}
			}

			if testCppOut != "" {
				if err := writeTestVectors(cat, testCppOut); err != nil {
					return err
				}
			}

			return nil
		},
	}

	rootCmd.Flags().BoolVar(&doSelfTest, "do-self-test", false, "Cross-check generated encodings against an external assembler")
	rootCmd.Flags().StringVar(&compiler, "compiler", "", "Compiler path for self-testing")
	rootCmd.Flags().StringVar(&objdump, "objdump", "", "objdump path for self-testing")
	rootCmd.Flags().StringVar(&decompOut, "decomp-out", "", "Path to write the generated Verilog decompressor module")
	rootCmd.Flags().StringVar(&testCppOut, "test-cpp-out", "", "Path to write the generated C++ test vector file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSelfTest(ctx context.Context, tc selftest.Toolchain, cat *catalog.Catalog) error {
	reports, err := selftest.Run(ctx, tc, cat)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range reports {
		if r.OK {
			continue
		}
		failed++
		fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Name, r.Err)
	}
	fmt.Printf("Self-test: %d checks, %d failed\n", len(reports), failed)
	if failed > 0 {
		return fmt.Errorf("%d self-test checks failed", failed)
	}
	return nil
}

func writeDecompressor(cat *catalog.Catalog, path string) error {
	names := cat.CompressedNames()
	commands := make([]*opcode.Command, len(names))
	for i, name := range names {
		cmd, ok := cat.Compressed(name)
		if !ok {
			return fmt.Errorf("internal: %s missing from catalog", name)
		}
		commands[i] = cmd
	}

	tree, err := selector.Generate(commands)
	if err != nil {
		return fmt.Errorf("building selection tree: %w", err)
	}
	body, err := emit.Module(cat, tree, "insn16", "insn32")
	if err != nil {
		return fmt.Errorf("emitting decompressor: %w", err)
	}

	out := "// Do not edit! This file is generated by rvcgen.\n\n" + body
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeTestVectors(cat *catalog.Catalog, path string) error {
	body, err := emit.TestVectors(cat)
	if err != nil {
		return fmt.Errorf("emitting test vectors: %w", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
