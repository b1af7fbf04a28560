package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nbaio/internal/shellexec"
)

var gitCloneCmd = &cobra.Command{
	Use:   "git-clone [flags] ARG...",
	Short: "Clone multiple git repositories concurrently",
	Long: `Clone repositories concurrently. Each argument is either a URL or a
URL and destination joined by the separator, e.g.:

  nbaio git-clone https://host/a.git https://host/b.git,bdir`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGitClone,
}

func init() {
	gitCloneCmd.Flags().StringP("separator", "s", ",", "separator between URL and destination")
	gitCloneCmd.Flags().IntP("concurrent", "c", 0, "maximum concurrent clones (0 uses manifest/default)")
	gitCloneCmd.Flags().String("cwd", "", "working directory for the clones")
}

func runGitClone(cmd *cobra.Command, args []string) error {
	sep, _ := cmd.Flags().GetString("separator")
	concurrent, _ := cmd.Flags().GetInt("concurrent")
	cwd, _ := cmd.Flags().GetString("cwd")

	cfg, _, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	if concurrent <= 0 {
		concurrent = cfg.Shell.Concurrent
	}

	pairs, err := parseClonePairs(args, sep)
	if err != nil {
		return err
	}
	results := shellexec.CloneAll(cmd.Context(), pairs, cwd, concurrent)

	quiet := quietEnabled(cmd)
	succeeded := 0
	for i, res := range results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", pairs[i].URL, res.Err)
		case res.ExitCode != 0:
			fmt.Fprintf(cmd.ErrOrStderr(), "exit %d %s\n", res.ExitCode, pairs[i].URL)
			if out := strings.TrimRight(res.Stderr, "\n"); out != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), out)
			}
		default:
			succeeded++
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "cloned %s\n", pairs[i].URL)
			}
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Finished %d clones. %d succeeded.\n", len(results), succeeded)
	}
	if succeeded != len(results) {
		return fmt.Errorf("%d of %d clones failed", len(results)-succeeded, len(results))
	}
	return nil
}

// parseClonePairs splits each argument into URL[<sep>DEST]. More than one
// separator in a single argument is ambiguous and rejected.
func parseClonePairs(args []string, sep string) ([]shellexec.ClonePair, error) {
	if sep == "" {
		return nil, fmt.Errorf("separator must not be empty")
	}
	pairs := make([]shellexec.ClonePair, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, sep)
		switch len(parts) {
		case 1:
			pairs = append(pairs, shellexec.ClonePair{URL: parts[0]})
		case 2:
			pairs = append(pairs, shellexec.ClonePair{URL: parts[0], Dest: parts[1]})
		default:
			return nil, fmt.Errorf("argument %q contains the separator %q more than once", arg, sep)
		}
	}
	return pairs, nil
}
