package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagit/internal/application/commands"
)

var tagCmd = &cobra.Command{
	Use:   "tag <file> <tags...>",
	Short: "Replace the tags of a file",
	Long: `Replace every tag of a file. Each argument may be a comma separated list.

Examples:
  tagit-cli tag notes/heap.md '#heap' '#memory'
  tagit-cli tag notes/heap.md '#heap, #memory'`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewTagCommand(GetStore(), GetWorkspace(), args[0], args[1:]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <file> <tags...>",
	Short: "Add tags to a file",
	Long: `Add tags to a file, keeping the ones it already has.

Example:
  tagit-cli add notes/heap.md '#todo'`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewAddTagsCommand(GetStore(), GetWorkspace(), args[0], args[1:]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag <file> <tag>",
	Short: "Remove one tag from a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewUntagCommand(GetStore(), GetWorkspace(), args[0], args[1]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <file>",
	Short: "Remove every tag of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := commands.NewClearCommand(GetStore(), GetWorkspace(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared tags of %s\n", GetWorkspace().Display(id))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the tags of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assoc, err := commands.NewShowCommand(GetStore(), GetWorkspace(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, tag := range assoc.Tags {
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(showCmd)
}
