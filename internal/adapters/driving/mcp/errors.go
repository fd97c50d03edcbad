// Package mcp provides an MCP (Model Context Protocol) server adapter for lexmerge.
// It lets AI assistants classify, merge and read the analysed contracts of
// local projects.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

// ErrMissingProjectID is returned when a tool is called without a project.
var ErrMissingProjectID = errors.New("mcp: project_id is required")
