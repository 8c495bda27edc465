// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes EchoNotes tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/parser"
)

// NoteFormatURI is the resource carrying NoteFormatContract.
const NoteFormatURI = "echonotes://note-format"

// Server wraps the MCP server with EchoNotes tools.
type Server struct {
	mcp   *server.MCPServer
	shell *dashboard.Shell
}

// New creates a new MCP server with all EchoNotes tools registered.
func New(shell *dashboard.Shell, version string) *Server {
	s := &Server{shell: shell}

	s.mcp = server.NewMCPServer(
		"EchoNotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive search over note titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithBoolean("trash", mcp.Description("Search the trash instead of active notes")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note as its Markdown file, frontmatter included."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note at the head of the list. "+
			"Other notes are linked by mentioning their titles in the content. "+
			"See the "+NoteFormatURI+" resource for the file format."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Markdown body")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("folder", mcp.Description("Folder id")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the EchoNotes note file format."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes as id and title, optionally in one folder or in the trash."),
		mcp.WithString("folder", mcp.Description("Optional folder id (empty for all)")),
		mcp.WithBoolean("trash", mcp.Description("List the trash instead of active notes")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("trash_note",
		mcp.WithDescription("Move a note to the trash."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.trashNote)

	s.mcp.AddTool(mcp.NewTool("get_links",
		mcp.WithDescription("List the graph connections from and to a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getLinks)

	s.mcp.AddTool(mcp.NewTool("get_theme",
		mcp.WithDescription("Return the active dashboard theme color and palette."),
	), s.getTheme)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("Markdown file format of an EchoNotes note."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type noteSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Tags    []string `json:"tags"`
	Folder  string   `json:"folder,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found := s.shell.ListNotes(req.GetBool("trash", false), query)
	results := make([]noteSummary, 0, len(found))
	for _, n := range found {
		results = append(results, noteSummary{ID: n.ID, Title: n.Title, Excerpt: n.Excerpt, Tags: n.Tags, Folder: n.FolderID})
	}
	return jsonResult(results)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.shell.Note(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	data, err := parser.Encode(n)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.shell.CreateNote(ctx, models.NoteInput{
		Title:    title,
		Content:  req.GetString("content", ""),
		Tags:     notes.ParseTags(req.GetString("tags", "")),
		FolderID: req.GetString("folder", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list []models.Note
	if folder := req.GetString("folder", ""); folder != "" {
		inFolder, err := s.shell.FolderNotes(folder)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		list = inFolder
	} else {
		list = s.shell.ListNotes(req.GetBool("trash", false), "")
	}

	lines := make([]string, 0, len(list))
	for _, n := range list {
		lines = append(lines, n.ID+"\t"+n.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) trashNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.shell.TrashNote(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("trashed: %s", id)), nil
}

type linkView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

func (s *Server) getLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g := s.shell.Graph()
	titles := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		titles[n.ID] = n.Label
	}
	if _, ok := titles[id]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not in graph: %s", id)), nil
	}

	out := struct {
		Outgoing []linkView `json:"outgoing"`
		Incoming []linkView `json:"incoming"`
	}{Outgoing: []linkView{}, Incoming: []linkView{}}
	for _, e := range g.Edges {
		switch id {
		case e.Source:
			out.Outgoing = append(out.Outgoing, linkView{ID: e.Target, Title: titles[e.Target], Type: string(e.Type)})
		case e.Target:
			out.Incoming = append(out.Incoming, linkView{ID: e.Source, Title: titles[e.Source], Type: string(e.Type)})
		}
	}
	return jsonResult(out)
}

func (s *Server) getTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := s.shell.ActiveTheme(ctx)
	return jsonResult(struct {
		Color   string  `json:"color"`
		Base    string  `json:"base"`
		Opacity float64 `json:"opacity"`
		Palette any     `json:"palette"`
	}{a.Color, a.Base, a.Opacity, a.Palette})
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
