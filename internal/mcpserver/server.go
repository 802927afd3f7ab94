// SPDX-License-Identifier: MPL-2.0

// Package mcpserver exposes the linter to MCP clients over stdio, so that
// editors and agents can lint a project and read the rule catalog.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/report"
	"github.com/steigerlint/steiger/pkg/rule"
)

// Tool names.
const (
	ToolLint        = "lint"
	ToolInspect     = "inspect"
	ToolListRules   = "list_rules"
	ToolExplainRule = "explain_rule"
)

type (
	// Options configures a Server.
	Options struct {
		Name    string
		Version string
		// Dir resolves relative paths and is the default lint target.
		Dir string
		// Configs are applied to every lint run.
		Configs []rule.ConfigObject
		// MaxShown is the default cap when a call does not pass max_shown.
		MaxShown int
		Logger   *log.Logger
	}

	// Server answers MCP tool calls with a lint.Service.
	Server struct {
		svc    *lint.Service
		opts   Options
		logger *log.Logger
		mcp    *server.MCPServer
	}
)

// New registers the tools on a fresh MCP server.
func New(svc *lint.Service, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "steiger"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logger,
		mcp: server.NewMCPServer(opts.Name, opts.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool(ToolLint,
		mcp.WithDescription("Lint a Feature-Sliced Design project and return the diagnostics as JSON"),
		mcp.WithString("path",
			mcp.Description("Folder to lint (default: ./src when it exists, else the working directory)"),
		),
		mcp.WithNumber("max_shown",
			mcp.Description("Maximum number of diagnostics to return; 0 returns all"),
			mcp.Min(0),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleLint)

	s.mcp.AddTool(mcp.NewTool(ToolInspect,
		mcp.WithDescription("Show how a project is split into layers, slices and segments"),
		mcp.WithString("path",
			mcp.Description("Folder to inspect (default: same as lint)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleInspect)

	s.mcp.AddTool(mcp.NewTool(ToolListRules,
		mcp.WithDescription("List every rule with its configured severity"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListRules)

	s.mcp.AddTool(mcp.NewTool(ToolExplainRule,
		mcp.WithDescription("Return the Markdown description of a rule"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Rule name, with or without the plugin prefix"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleExplainRule)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))
	s.logger.Info("serving MCP on stdio", "tools", []string{ToolLint, ToolInspect, ToolListRules, ToolExplainRule})
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func (s *Server) handleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := s.resolve(req.GetString("path", ""))
	maxShown := req.GetInt("max_shown", s.opts.MaxShown)
	if maxShown < 0 {
		return mcp.NewToolResultError("max_shown must not be negative"), nil
	}

	s.logger.Debug("lint tool", "root", root, "maxShown", maxShown)
	r, err := s.svc.Lint(ctx, lint.Request{Root: root, Configs: s.opts.Configs, MaxShown: maxShown})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("lint failed", err), nil
	}

	var buf bytes.Buffer
	if err := report.JSON(&buf, r); err != nil {
		return mcp.NewToolResultErrorFromErr("encode report", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleInspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := s.resolve(req.GetString("path", ""))

	plan, err := s.svc.Plan(s.opts.Configs)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid configuration", err), nil
	}
	model, err := lint.Inspect(ctx, root, plan.GlobalIgnores)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("inspect failed", err), nil
	}
	return jsonResult(model)
}

func (s *Server) handleListRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog, err := s.svc.Catalog(s.opts.Configs)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid configuration", err), nil
	}
	return jsonResult(catalog)
}

func (s *Server) handleExplainRule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, ok, err := s.svc.Describe(name, s.opts.Configs)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid configuration", err), nil
	}
	if !ok {
		return mcp.NewToolResultErrorf("unknown rule %q", name), nil
	}
	if info.Docs == "" {
		return mcp.NewToolResultText(fmt.Sprintf("%s has no description. See %s", info.Name, info.DocsURL)), nil
	}
	return mcp.NewToolResultText(info.Docs), nil
}

// resolve makes p absolute against the server's folder. Empty means the
// default lint root.
func (s *Server) resolve(p string) string {
	if p == "" {
		return lint.DefaultRoot(s.opts.Dir)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.opts.Dir, p)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encode result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
