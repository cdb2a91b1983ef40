// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the shopping lists as tools via stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/martini/internal/listservice"
)

// Server wraps the MCP server with martini tools.
type Server struct {
	mcp *server.MCPServer
	svc *listservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *listservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"martini",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("need",
		mcp.WithDescription("Put items on a conversation's shopping list. "+
			"Items already on the list (ignoring case) are reported and left alone."),
		mcp.WithNumber("chat_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("items", mcp.Required(), mcp.Description("Comma-separated item names, e.g. \"milk, bread\"")),
	), s.need)

	s.mcp.AddTool(mcp.NewTool("got",
		mcp.WithDescription("Take bought items off a conversation's shopping list."),
		mcp.WithNumber("chat_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("items", mcp.Required(), mcp.Description("Comma-separated item names")),
	), s.got)

	s.mcp.AddTool(mcp.NewTool("show_list",
		mcp.WithDescription("Show what a conversation still needs."),
		mcp.WithNumber("chat_id", mcp.Required(), mcp.Description("Conversation id")),
	), s.showList)

	s.mcp.AddTool(mcp.NewTool("who_needs",
		mcp.WithDescription("List the conversations that have an item on their list."),
		mcp.WithString("item", mcp.Required(), mcp.Description("Item name (case-insensitive)")),
	), s.whoNeeds)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) need(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runCommand(ctx, req, "/need")
}

func (s *Server) got(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runCommand(ctx, req, "/got")
}

// runCommand routes the tool call through the same command path chat
// messages take, so the list is persisted exactly as for a chat.
func (s *Server) runCommand(ctx context.Context, req mcp.CallToolRequest, keyword string) (*mcp.CallToolResult, error) {
	id, err := requireChatID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := req.RequireString("items")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := s.svc.HandleMessage(ctx, id, keyword+" "+items)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(reply.Reply), nil
}

func (s *Server) showList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireChatID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.svc.GetList(ctx, id).Text), nil
}

func (s *Server) whoNeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.svc.WhoNeeds(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("nobody needs %q", strings.TrimSpace(name))), nil
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = strconv.FormatInt(id, 10)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// requireChatID reads chat_id, which arrives as a JSON number.
func requireChatID(req mcp.CallToolRequest) (int64, error) {
	f, err := req.RequireFloat("chat_id")
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, errors.New("chat_id must be an integer")
	}
	return int64(f), nil
}
