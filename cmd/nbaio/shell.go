package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nbaio/internal/shellexec"
)

var shellCmd = &cobra.Command{
	Use:   "shell [flags] CMD...",
	Short: "Run multiple shell commands concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShell,
}

func init() {
	shellCmd.Flags().IntP("concurrent", "c", 0, "maximum concurrent commands (0 uses manifest/default)")
	shellCmd.Flags().String("cwd", "", "working directory for the commands")
}

func runShell(cmd *cobra.Command, lines []string) error {
	concurrent, _ := cmd.Flags().GetInt("concurrent")
	cwd, _ := cmd.Flags().GetString("cwd")

	cfg, _, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	if concurrent <= 0 {
		concurrent = cfg.Shell.Concurrent
	}

	specs := make([]shellexec.Spec, 0, len(lines))
	for _, line := range lines {
		specs = append(specs, shellexec.Spec{Line: line, Dir: cwd, Capture: true})
	}
	results := shellexec.RunAll(cmd.Context(), specs, concurrent)

	quiet := quietEnabled(cmd)
	succeeded := 0
	for _, res := range results {
		label := res.Spec.Line
		switch {
		case res.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "failed %q: %v\n", label, res.Err)
		case res.ExitCode != 0:
			fmt.Fprintf(cmd.ErrOrStderr(), "exit %d %q\n", res.ExitCode, label)
			if out := strings.TrimRight(res.Stderr, "\n"); out != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), out)
			}
		default:
			succeeded++
			if !quiet {
				if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
					fmt.Fprintln(cmd.OutOrStdout(), out)
				}
			}
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Finished %d commands. %d succeeded.\n", len(results), succeeded)
	}
	if succeeded != len(results) {
		return fmt.Errorf("%d of %d commands failed", len(results)-succeeded, len(results))
	}
	return nil
}
