package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func analyzerOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("format",
			mcp.Description("Output format: json (PropType AST) or text (one line per prop)"),
			mcp.Enum("json", "text"),
		),
		mcp.WithBoolean("check_declarations",
			mcp.Description("Treat `declare const X: ComponentType<P>` bindings as components"),
		),
		mcp.WithNumber("max_properties",
			mcp.Description("Objects with more properties are left unresolved (default 50)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Nested objects deeper than this are left unresolved (default 3)"),
		),
		mcp.WithArray("exclude_props",
			mcp.Description("Prop names to leave out, in addition to `ref`"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	}
}

func parseFileTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Find the React components declared in one TypeScript file and describe their props."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the workspace root"),
		),
	}
	return mcp.NewTool("parse_file", append(opts, analyzerOptions()...)...)
}

func scanDirectoryTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Find the React components in every source file under a directory and describe their props."),
		mcp.WithString("path",
			mcp.Description("Directory, relative to the workspace root (default: the root)"),
		),
	}
	return mcp.NewTool("scan_directory", append(opts, analyzerOptions()...)...)
}
