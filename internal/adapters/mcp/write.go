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

// RegisterWriteTools adds all tag mutating tools to the MCP server.
// exists is the liveness probe used by sweep.
func RegisterWriteTools(s *server.MCPServer, repo ports.TagRepository, ws ports.Workspace, exists ports.ExistsFunc) {
	s.AddTool(setTagsTool(), tagHandler(repo, ws, false))
	s.AddTool(addTagsTool(), tagHandler(repo, ws, true))
	s.AddTool(removeTagTool(), removeTagHandler(repo, ws))
	s.AddTool(clearTagsTool(), clearTagsHandler(repo, ws))
	s.AddTool(renameTool(), renameHandler(repo, ws))
	s.AddTool(sweepTool(), sweepHandler(repo, ws, exists))
}

// --- set_tags / add_tags ---

func setTagsTool() mcp.Tool {
	return mcp.NewTool("set_tags",
		mcp.WithDescription("Replace every tag of a file. Tag names cannot contain whitespace or any of & | ( )."),
		fileParam(),
		tagsParam(),
	)
}

func addTagsTool() mcp.Tool {
	return mcp.NewTool("add_tags",
		mcp.WithDescription("Add tags to a file, keeping the ones it already has."),
		fileParam(),
		tagsParam(),
	)
}

func tagHandler(repo ports.TagRepository, ws ports.Workspace, add bool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		tags := []string{req.GetString("tags", "")}

		cmd := commands.NewTagCommand(repo, ws, file, tags)
		if add {
			cmd = commands.NewAddTagsCommand(repo, ws, file, tags)
		}
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- remove_tag ---

func removeTagTool() mcp.Tool {
	return mcp.NewTool("remove_tag",
		mcp.WithDescription("Remove one tag from a file. Removing a tag the file does not carry is not an error."),
		fileParam(),
		mcp.WithString("tag",
			mcp.Description("Tag to remove"),
			mcp.Required(),
		),
	)
}

func removeTagHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewUntagCommand(repo, ws, req.GetString("file", ""), req.GetString("tag", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- clear_tags ---

func clearTagsTool() mcp.Tool {
	return mcp.NewTool("clear_tags",
		mcp.WithDescription("Remove every tag of a file."),
		fileParam(),
	)
}

func clearTagsHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := commands.NewClearCommand(repo, ws, req.GetString("file", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared tags of %s", ws.Display(id))), nil
	}
}

// --- rename ---

func renameTool() mcp.Tool {
	return mcp.NewTool("rename",
		mcp.WithDescription("Move the tags of a file to a new path after the file was moved. Tags already on the destination are replaced."),
		mcp.WithString("old_path",
			mcp.Description("Previous path of the file"),
			mcp.Required(),
		),
		mcp.WithString("new_path",
			mcp.Description("New path of the file"),
			mcp.Required(),
		),
	)
}

func renameHandler(repo ports.TagRepository, ws ports.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewRenameCommand(repo, ws, req.GetString("old_path", ""), req.GetString("new_path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- sweep ---

func sweepTool() mcp.Tool {
	return mcp.NewTool("sweep",
		mcp.WithDescription("Delete the tags of files that no longer exist. Files that cannot be checked are left alone."),
	)
}

func sweepHandler(repo ports.TagRepository, ws ports.Workspace, exists ports.ExistsFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := commands.NewSweepCommand(repo, exists).Execute(ctx)
		if report == nil {
			return toolError(err)
		}

		text := formatSweep(report, ws)
		if err != nil {
			return mcp.NewToolResultError(text + "\n" + err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func formatSweep(report *domain.SweepReport, ws ports.Workspace) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Checked %d, removed %d, skipped %d\n", report.Checked, len(report.Removed), len(report.Skipped))
	for _, id := range report.Removed {
		fmt.Fprintf(&sb, "removed  %s\n", ws.Display(id))
	}
	for _, id := range report.Failed {
		fmt.Fprintf(&sb, "failed   %s\n", ws.Display(id))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// --- helpers ---

func fileParam() mcp.ToolOption {
	return mcp.WithString("file",
		mcp.Description("File path, relative to the workspace root, or a file:// URI"),
		mcp.Required(),
	)
}

func tagsParam() mcp.ToolOption {
	return mcp.WithString("tags",
		mcp.Description("Comma separated tags, e.g. \"#stack, #heap\""),
		mcp.Required(),
	)
}
