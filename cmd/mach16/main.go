package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/oisee/mach16/pkg/asm"
	"github.com/oisee/mach16/pkg/bus"
	"github.com/oisee/mach16/pkg/cpu"
	"github.com/oisee/mach16/pkg/image"
	"github.com/spf13/cobra"
)

func main() {
	// glog wants the flag package initialized; diagnostics go to stderr so
	// they never mix with the machine's device output on stdout.
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	rootCmd := &cobra.Command{
		Use:           "mach16",
		Short:         "Mach16 toolchain — assembler and emulator for a 16-bit machine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// asm command
	var output string

	asmCmd := &cobra.Command{
		Use:   "asm <source>",
		Short: "Assemble a source file into a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			words, err := asm.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := os.WriteFile(output, image.Encode(words), 0o644); err != nil {
				return err
			}
			glog.V(1).Infof("wrote %d words to %s", len(words), output)
			return nil
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "a.bin", "Output binary path")

	// run command
	var trace bool
	var memdump string

	runCmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Execute a binary image until the machine halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			b := bus.New(os.Stdout)
			c := cpu.New(b)
			c.Load(image.Decode(data), 0)
			if trace {
				c.Trace = os.Stderr
			}
			// A machine-level fault halts cleanly and is already reported;
			// the process still exits zero because the state is well-defined.
			c.Run()

			if memdump != "" {
				f, err := os.Create(memdump)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := image.DumpMemory(f, b); err != nil {
					return err
				}
			}
			return nil
		},
	}
	runCmd.Flags().BoolVar(&trace, "trace", false, "Print per-instruction state to stderr")
	runCmd.Flags().StringVar(&memdump, "memdump", "", "Dump memory to this path after halt")

	rootCmd.AddCommand(asmCmd)
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
