package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagit/internal/adapters/filesystem"
	"tagit/internal/application/commands"
)

var (
	findInclude []string
	findExplain bool
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Find files whose tags satisfy a query",
	Long: `Find files whose tags satisfy a boolean query.

Tag names are literals, & is AND, | is OR, AND binds tighter than OR and
parentheses group. Quote the query so the shell leaves it alone.

Examples:
  tagit-cli find '#stack & #heap'
  tagit-cli find '(#stack | #queue) & #heap'
  tagit-cli find '#todo' --include 'notes/**'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		find := commands.NewFindCommand(GetStore(), GetWorkspace(), strings.Join(args, " "))
		if len(findInclude) > 0 {
			matcher, err := filesystem.NewPatternMatcher(findInclude, nil)
			if err != nil {
				return err
			}
			find.Include = matcher
		}

		result, err := find.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if findExplain {
			fmt.Fprintf(out, "# %s\n", result.Query)
		}
		for _, m := range result.Matches {
			fmt.Fprintln(out, GetWorkspace().Display(m.ID))
		}
		return nil
	},
}

func init() {
	findCmd.Flags().StringSliceVar(&findInclude, "include", nil, "only report paths matching these globs (relative to the root)")
	findCmd.Flags().BoolVar(&findExplain, "explain", false, "print the parsed query first")

	rootCmd.AddCommand(findCmd)
}
