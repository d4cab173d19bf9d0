package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagit/internal/application"
	"tagit/internal/application/commands"
)

var (
	listTags  bool
	listByTag string
	treeFiles bool
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tagged files, or tags with --tags",
	Long: `List every tagged file with its tags, or every tag in use with the
number of files carrying it.

Examples:
  tagit-cli ls
  tagit-cli ls --tag '#todo'
  tagit-cli ls --tags`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if listTags {
			counts, err := commands.NewListTagsCommand(GetStore()).Execute(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range counts {
				fmt.Fprintf(out, "%s\t%d\n", c.Tag, c.Count)
			}
			return nil
		}

		assocs, err := commands.NewListFilesCommand(GetStore(), listByTag).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, a := range assocs {
			fmt.Fprintf(out, "%s\t%s\n", GetWorkspace().Display(a.ID), a.Tags)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print tags with their files",
	Long: `Print every tag with the files under it, or every file with its tags
when --by-file is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := commands.NewTreeCommand(GetStore(), treeFiles).Execute(cmd.Context())
		if err != nil {
			return err
		}
		var sb strings.Builder
		printTree(&sb, root, 0)
		fmt.Fprint(cmd.OutOrStdout(), sb.String())
		return nil
	},
}

func printTree(sb *strings.Builder, node *application.TreeNode, depth int) {
	if node == nil {
		return
	}

	if node.Kind != application.NodeRoot {
		label := node.Label
		if node.Kind == application.NodeFile {
			label = GetWorkspace().Display(node.ID)
		}
		fmt.Fprintf(sb, "%s%s\n", strings.Repeat("  ", depth-1), label)
	}

	for _, child := range node.Children {
		printTree(sb, child, depth+1)
	}
}

func init() {
	listCmd.Flags().BoolVar(&listTags, "tags", false, "list tags with file counts instead of files")
	listCmd.Flags().StringVar(&listByTag, "tag", "", "only list files carrying this tag")
	treeCmd.Flags().BoolVar(&treeFiles, "by-file", false, "group tags under files")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(treeCmd)
}
