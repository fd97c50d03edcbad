package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for lexmerge resources.
	uriScheme = "lexmerge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "List of all projects under the projects root",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/result",
		Name:        "project-result",
		Description: "Latest stored merge result for a project",
		MIMEType:    "application/json",
	}, s.handleResultResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/history",
		Name:        "project-history",
		Description: "All stored merge results for a project, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/contract",
		Name:        "project-contract",
		Description: "Final merged contract text for a project",
		MIMEType:    "text/plain",
	}, s.handleContractResource)
}

// handleProjectsResource returns the list of project IDs.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Projects == nil {
		return textResult(req.Params.URI, "application/json", "[]"), nil
	}

	projects, err := s.ports.Projects.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if projects == nil {
		projects = []string{}
	}
	return jsonResult(req.Params.URI, projects)
}

// handleResultResource returns the latest result of a project.
func (s *Server) handleResultResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID := extractProjectID(req.Params.URI, "/result")
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Analysis.Result(ctx, projectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading result: %w", err)
	}
	return jsonResult(req.Params.URI, toMergeOutput(result))
}

// handleHistoryResource returns every stored result of a project.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID := extractProjectID(req.Params.URI, "/history")
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	history, err := s.ports.Analysis.History(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	outputs := make([]MergeOutput, len(history))
	for i := range history {
		outputs[i] = toMergeOutput(&history[i])
	}
	return jsonResult(req.Params.URI, outputs)
}

// handleContractResource returns the final contract text of a project.
func (s *Server) handleContractResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID := extractProjectID(req.Params.URI, "/contract")
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Analysis.Result(ctx, projectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading result: %w", err)
	}
	return textResult(req.Params.URI, "text/plain", result.FinalContract), nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return textResult(uri, "application/json", string(data)), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractProjectID extracts the project ID from a URI like lexmerge://projects/{projectId}/result.
func extractProjectID(uri, suffix string) string {
	const prefix = uriScheme + "projects/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id, err := url.PathUnescape(strings.TrimSuffix(uri, suffix))
	if err != nil || strings.Contains(id, "/") {
		return ""
	}
	return id
}
