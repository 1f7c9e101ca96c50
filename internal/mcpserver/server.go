// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the star system catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/search"
)

// defaultSearchLimit caps search_systems when no limit is given.
const defaultSearchLimit = 50

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalog.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"starsys",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	classes := make([]string, len(models.Classifications))
	for i, c := range models.Classifications {
		classes[i] = string(c)
	}

	s.mcp.AddTool(mcp.NewTool("search_systems",
		mcp.WithDescription("Search star systems by distance, spectral class, planets and name. "+
			"Returns JSON records; see get_record_format for the shape."),
		mcp.WithNumber("max_distance", mcp.Description("Maximum distance from Earth in light-years")),
		mcp.WithString("spectral_types", mcp.Description("Comma-separated spectral classes, e.g. \"G,K\"")),
		mcp.WithBoolean("has_planets", mcp.Description("true for systems with planets, false for systems without")),
		mcp.WithNumber("min_planets", mcp.Description("Minimum number of planets")),
		mcp.WithString("name", mcp.Description("Case-insensitive substring of the system name")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum results (default %d)", defaultSearchLimit))),
	), s.searchSystems)

	s.mcp.AddTool(mcp.NewTool("get_system",
		mcp.WithDescription("Get one star system and its planets by exact name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact system name, e.g. \"TRAPPIST-1\"")),
	), s.getSystem)

	s.mcp.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Catalog statistics: counts, average distance and spectral class distribution."),
	), s.getStatistics)

	s.mcp.AddTool(mcp.NewTool("find_planets",
		mcp.WithDescription("Find planets across the catalog by minimum mass and classification."),
		mcp.WithNumber("min_mass", mcp.Description("Keep planets strictly heavier than this, in Earth masses")),
		mcp.WithString("classification", mcp.Enum(classes...), mcp.Description("Planet classification")),
	), s.findPlanets)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the star system record format and classification rules. "+
			"Read this before interpreting search results."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(RecordFormatURI, "Star System Record Format",
			mcp.WithResourceDescription("JSON record shape, classification rules and CSV layout."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// has reports whether the client sent key at all, so zero values can be told
// apart from missing arguments.
func has(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

func (s *Server) searchSystems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := catalog.Query{
		Name:  strings.TrimSpace(req.GetString("name", "")),
		Limit: req.GetInt("limit", defaultSearchLimit),
	}
	if has(req, "max_distance") {
		d := req.GetFloat("max_distance", 0)
		q.MaxDistance = &d
	}
	if types := req.GetString("spectral_types", ""); types != "" {
		q.SpectralTypes = search.SplitClasses(types)
	}
	if has(req, "has_planets") {
		b := req.GetBool("has_planets", false)
		q.HasPlanets = &b
	}
	if has(req, "min_planets") {
		n := req.GetInt("min_planets", 0)
		q.MinPlanets = &n
	}

	systems, err := s.svc.List(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(models.Records(systems)), nil
}

func (s *Server) getSystem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sys, err := s.svc.Get(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sys.Record()), nil
}

func (s *Server) getStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats), nil
}

type planetHit struct {
	System string              `json:"system"`
	Planet models.PlanetRecord `json:"planet"`
}

func (s *Server) findPlanets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := catalog.PlanetQuery{Classification: req.GetString("classification", "")}
	if has(req, "min_mass") {
		m := req.GetFloat("min_mass", 0)
		q.MinMass = &m
	}
	matches, err := s.svc.Planets(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits := make([]planetHit, len(matches))
	for i, m := range matches {
		hits[i] = planetHit{System: m.System.Name, Planet: m.Planet.Record()}
	}
	return jsonResult(hits), nil
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
