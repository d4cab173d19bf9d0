package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tagit/internal/application/commands"
	"tagit/internal/domain"
	"tagit/internal/ports"
)

// RegisterReadTools adds all read-only tag tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, repo ports.TagRepository, ws ports.Workspace) {
	s.AddTool(getTagsTool(), getTagsHandler(repo, ws))
	s.AddTool(listFilesTool(), listFilesHandler(repo, ws))
	s.AddTool(listTagsTool(), listTagsHandler(repo))
	s.AddTool(findTool(), findHandler(repo, ws))
	s.AddTool(treeTool(), treeHandler(repo, ws))
}

// --- get_tags ---

func getTagsTool() mcp.Tool {
	return mcp.NewTool("get_tags",
		mcp.WithDescription("Get the tags of a file. Returns an empty result when the file has none."),
		mcp.WithString("file",
			mcp.Description("File path, relative to the workspace root, or a file:// URI"),
			mcp.Required(),
		),
	)
}

func getTagsHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")

		assoc, err := commands.NewShowCommand(repo, ws, file).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if assoc.Tags.IsEmpty() {
			return mcp.NewToolResultText(fmt.Sprintf("%s has no tags.", ws.Display(assoc.ID))), nil
		}
		return mcp.NewToolResultText(assoc.Tags.String()), nil
	}
}

// --- list_files ---

func listFilesTool() mcp.Tool {
	return mcp.NewTool("list_files",
		mcp.WithDescription("List every tagged file with its tags, one per line."),
		mcp.WithString("tag",
			mcp.Description("Only list files carrying this tag"),
		),
	)
}

func listFilesHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assocs, err := commands.NewListFilesCommand(repo, req.GetString("tag", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatAssociations(assocs, ws)
	}
}

// --- list_tags ---

func listTagsTool() mcp.Tool {
	return mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag in use with the number of files carrying it."),
	)
}

func listTagsHandler(repo ports.TagRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		counts, err := commands.NewListTagsCommand(repo).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(counts) == 0 {
			return mcp.NewToolResultText("No tags."), nil
		}
		var sb strings.Builder
		for _, c := range counts {
			fmt.Fprintf(&sb, "%s  %d\n", c.Tag, c.Count)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- find ---

func findTool() mcp.Tool {
	return mcp.NewTool("find",
		mcp.WithDescription("Find files whose tags satisfy a boolean query. "+
			"Literals are tag names, '&' is AND, '|' is OR, AND binds tighter than OR, parentheses group. "+
			"Example: (#stack | #queue) & #heap"),
		mcp.WithString("query",
			mcp.Description("Tag query"),
			mcp.Required(),
		),
	)
}

func findHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewFindCommand(repo, ws, req.GetString("query", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Matches) == 0 {
			return mcp.NewToolResultText("No files match."), nil
		}
		return formatAssociations(result.Matches, ws)
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display tags with the files under each, or files with their tags when by_file is set."),
		mcp.WithBoolean("by_file",
			mcp.Description("Group tags under files instead of files under tags"),
		),
	)
}

func treeHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := commands.NewTreeCommand(repo, req.GetBool("by_file", false)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		renderTree(&sb, root, ws, "")
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderTree(sb *strings.Builder, node *domain.TreeNode, ws ports.Workspace, prefix string) {
	if node.Kind != domain.NodeRoot {
		label := node.Label
		if node.Kind == domain.NodeFile {
			label = ws.Display(node.ID)
		}
		fmt.Fprintf(sb, "%s%s\n", prefix, label)
		prefix += "  "
	}
	for _, child := range node.Children {
		renderTree(sb, child, ws, prefix)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatAssociations(assocs []domain.Association, ws ports.Workspace) (*mcp.CallToolResult, error) {
	if len(assocs) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, a := range assocs {
		fmt.Fprintf(&sb, "%s  %s\n", ws.Display(a.ID), a.Tags)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
