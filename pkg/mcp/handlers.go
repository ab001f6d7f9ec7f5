package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/tsproptypes/pkg/analyzer"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
	"github.com/gnana997/tsproptypes/pkg/scanner"
)

func (s *Server) handleParseFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := s.resolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, format, err := s.requestConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	related, err := scanner.DiscoverFiles(s.root, cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("discovery failed", err), nil
	}
	result, err := s.scanner.ParseTargets(ctx, []string{file}, related, cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("parse failed", err), nil
	}
	if fileErr := result.Files[0].Err; fileErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse %s: %v", path, fileErr)), nil
	}
	return render(format, result.Files[0].Program)
}

func (s *Server) handleScanDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.resolvePath(req.GetString("path", "."))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", req.GetString("path", "."))), nil
	}
	cfg, format, err := s.requestConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.scanner.Run(ctx, dir, cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("scan failed", err), nil
	}
	return render(format, result.Programs()...)
}

// requestConfig layers the request's analyzer arguments over the server config.
func (s *Server) requestConfig(req mcp.CallToolRequest) (scanner.ScanConfig, proptypes.Format, error) {
	cfg := s.config

	format, err := proptypes.ParseFormat(req.GetString("format", string(proptypes.FormatJSON)))
	if err != nil {
		return cfg, "", err
	}

	cfg.Analyzer.CheckDeclarations = req.GetBool("check_declarations", cfg.Analyzer.CheckDeclarations)

	maxProps := req.GetInt("max_properties", 0)
	maxDepth := req.GetInt("max_depth", 0)
	if maxProps > 0 || maxDepth > 0 {
		cfg.Analyzer.ShouldResolveObject = analyzer.ResolveLimits(maxProps, maxDepth)
	}

	exclude := req.GetStringSlice("exclude_props", nil)
	if len(exclude) > 0 {
		cfg.Analyzer.ShouldInclude = analyzer.ExcludeProps(exclude...)
	}

	sorted := slices.Clone(exclude)
	slices.Sort(sorted)
	cfg.OptionsKey = fmt.Sprintf("%s|props=%d|depth=%d|exclude=%s",
		s.config.OptionsKey, maxProps, maxDepth, strings.Join(sorted, ","))
	return cfg, format, nil
}

// resolvePath resolves p against the root and rejects paths outside it.
func (s *Server) resolvePath(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the workspace root", p)
	}
	return p, nil
}

func render(format proptypes.Format, programs ...*proptypes.Program) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := proptypes.Write(&buf, format, programs...); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
