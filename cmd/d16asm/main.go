// Command d16asm assembles d16 source files. Cobra command tree grounded
// on oisee-z80-optimizer/cmd/z80opt, the pack's other assembly-level
// tooling CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyproc/d16/asm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "d16asm",
		Short: "Assembler for the d16 instruction set",
	}

	var outPath string

	assembleCmd := &cobra.Command{
		Use:   "assemble [file]",
		Short: "Assemble a source file into a word image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			start, words, err := asm.Assemble(string(src))
			if err != nil {
				return err
			}

			for i, w := range words {
				fmt.Printf("0x%04x: 0x%04x\n", start+uint16(i), w)
			}

			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				for _, w := range words {
					if _, err := fmt.Fprintf(f, "%04x\n", w); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	assembleCmd.Flags().StringVar(&outPath, "out", "", "write the raw word image to this file")

	rootCmd.AddCommand(assembleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
