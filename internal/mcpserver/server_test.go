package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/starsys/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(testutil.TestService(t, testutil.SampleSystems()), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_systems":
		result, err = srv.searchSystems(ctx, req)
	case "get_system":
		result, err = srv.getSystem(ctx, req)
	case "get_statistics":
		result, err = srv.getStatistics(ctx, req)
	case "find_planets":
		result, err = srv.findPlanets(ctx, req)
	case "get_record_format":
		result, err = srv.getRecordFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type systemJSON struct {
	Name        string `json:"name"`
	PlanetCount int    `json:"planet_count"`
	Planets     []struct {
		Name           string `json:"name"`
		Classification string `json:"classification"`
	} `json:"planets"`
}

func TestSearchSystems(t *testing.T) {
	srv := testServer(t)

	var all []systemJSON
	r := callTool(t, srv, "search_systems", map[string]interface{}{})
	if err := json.Unmarshal([]byte(resultText(r)), &all); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}

	var near []systemJSON
	r = callTool(t, srv, "search_systems", map[string]interface{}{
		"max_distance":   float64(50),
		"spectral_types": "M",
		"has_planets":    false,
	})
	if err := json.Unmarshal([]byte(resultText(r)), &near); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(near) != 1 || near[0].Name != "Proxima Centauri" {
		t.Errorf("near = %+v", near)
	}

	var multi []systemJSON
	r = callTool(t, srv, "search_systems", map[string]interface{}{"min_planets": float64(2), "limit": float64(10)})
	_ = json.Unmarshal([]byte(resultText(r)), &multi)
	if len(multi) != 1 || multi[0].Name != "HD 40307" {
		t.Errorf("multi = %+v", multi)
	}
}

func TestSearchSystemsBadLimit(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_systems", map[string]interface{}{"limit": float64(-5)})
	if !r.IsError {
		t.Error("negative limit should be a tool error")
	}
}

func TestGetSystem(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_system", map[string]interface{}{"name": "Kepler-22"})
	var sys systemJSON
	if err := json.Unmarshal([]byte(resultText(r)), &sys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sys.PlanetCount != 1 || sys.Planets[0].Classification != "Gas Giant" {
		t.Errorf("system = %+v", sys)
	}

	r = callTool(t, srv, "get_system", map[string]interface{}{"name": "Nowhere"})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("missing system result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_system", map[string]interface{}{})
	if !r.IsError {
		t.Error("missing name should be a tool error")
	}
}

func TestGetStatistics(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_statistics", map[string]interface{}{})
	var stats struct {
		TotalSystems int            `json:"total_systems"`
		Distribution map[string]int `json:"spectral_type_distribution"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalSystems != 3 || stats.Distribution["G"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFindPlanets(t *testing.T) {
	srv := testServer(t)

	var hits []struct {
		System string `json:"system"`
	}
	r := callTool(t, srv, "find_planets", map[string]interface{}{"classification": "Super-Earth", "min_mass": float64(5)})
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if len(hits) != 1 || hits[0].System != "HD 40307" {
		t.Errorf("hits = %+v", hits)
	}

	r = callTool(t, srv, "find_planets", map[string]interface{}{"classification": "comet"})
	if !r.IsError {
		t.Error("unknown classification should be a tool error")
	}
}

func TestRecordFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_record_format", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Super-Earth") {
		t.Error("record format should describe classifications")
	}

	contents, err := srv.readRecordFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != RecordFormatURI || tc.Text != RecordFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
