package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
)

// ProjectInput is the input schema for the classify and merge tools.
type ProjectInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project directory name"`
}

// AnalyzeInput is the input schema for the analyze tool.
type AnalyzeInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project directory name"`
	Refresh   bool   `json:"refresh,omitempty" jsonschema:"re-run the analysis even if a stored result exists"`
}

// ClassifyOutput is the output schema for the classify tool.
type ClassifyOutput struct {
	Documents          []DocumentOutput `json:"documents"`
	ChronologicalOrder []string         `json:"chronological_order"`
}

// DocumentOutput represents a single classified document.
type DocumentOutput struct {
	Filename        string  `json:"filename"`
	Role            string  `json:"role"`
	ExecutionDate   string  `json:"execution_date,omitempty"`
	EffectiveDate   string  `json:"effective_date,omitempty"`
	Amends          string  `json:"amends,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
	Source          string  `json:"source,omitempty"`
	ExtractionError string  `json:"extraction_error,omitempty"`
}

// MergeOutput is the output schema for the merge and analyze tools.
type MergeOutput struct {
	ID                       string                    `json:"id"`
	ProjectID                string                    `json:"project_id"`
	BaseSummary              string                    `json:"base_summary"`
	AmendmentSummaries       []domain.AmendmentSummary `json:"amendment_summaries"`
	ClauseChangeLog          []domain.ClauseChange     `json:"clause_change_log"`
	FinalContract            string                    `json:"final_contract"`
	DocumentIncorporationLog []string                  `json:"document_incorporation_log"`
	Fallback                 bool                      `json:"fallback"`
	CreatedAt                string                    `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_documents",
		Description: "Classify a project's documents as base, amendment or ancillary and order them chronologically",
	}, s.handleClassify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "merge_project",
		Description: "Merge a project's base agreement and amendments into one contract with a clause change log",
	}, s.handleMerge)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Return the stored merged contract for a project, running the analysis if needed",
	}, s.handleAnalyze)
}

// handleClassify handles the classify_documents tool invocation.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	projectID, err := requireProject(input.ProjectID)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	batch, err := s.ports.Analysis.Classify(ctx, projectID)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	output := ClassifyOutput{
		Documents:          make([]DocumentOutput, len(batch.Documents)),
		ChronologicalOrder: batch.ChronologicalOrder,
	}
	for i := range batch.Documents {
		output.Documents[i] = toDocumentOutput(&batch.Documents[i])
	}
	if output.ChronologicalOrder == nil {
		output.ChronologicalOrder = []string{}
	}

	return nil, output, nil
}

// handleMerge handles the merge_project tool invocation.
func (s *Server) handleMerge(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectInput,
) (*mcp.CallToolResult, MergeOutput, error) {
	projectID, err := requireProject(input.ProjectID)
	if err != nil {
		return nil, MergeOutput{}, err
	}

	result, err := s.ports.Analysis.Merge(ctx, projectID)
	if err != nil {
		return nil, MergeOutput{}, err
	}
	return nil, toMergeOutput(result), nil
}

// handleAnalyze handles the analyze_project tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, MergeOutput, error) {
	projectID, err := requireProject(input.ProjectID)
	if err != nil {
		return nil, MergeOutput{}, err
	}

	result, err := s.ports.Analysis.Analyze(ctx, projectID, driving.AnalyzeOptions{Refresh: input.Refresh})
	if err != nil {
		return nil, MergeOutput{}, err
	}
	return nil, toMergeOutput(result), nil
}

func requireProject(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingProjectID
	}
	return id, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	out := DocumentOutput{
		Filename:        doc.Filename,
		Role:            string(doc.Role),
		Amends:          doc.Amends,
		Confidence:      doc.Confidence,
		Source:          string(doc.Source),
		ExtractionError: doc.ExtractionError,
	}
	if doc.ExecutionDate != nil {
		out.ExecutionDate = doc.ExecutionDate.Format(domain.DateLayout)
	}
	if doc.EffectiveDate != nil {
		out.EffectiveDate = doc.EffectiveDate.Format(domain.DateLayout)
	}
	return out
}

func toMergeOutput(r *domain.MergeResult) MergeOutput {
	out := MergeOutput{
		ID:                       r.ID,
		ProjectID:                r.ProjectID,
		BaseSummary:              r.BaseSummary,
		AmendmentSummaries:       r.AmendmentSummaries,
		ClauseChangeLog:          r.ClauseChangeLog,
		FinalContract:            r.FinalContract,
		DocumentIncorporationLog: r.DocumentIncorporationLog,
		Fallback:                 r.Fallback,
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if out.AmendmentSummaries == nil {
		out.AmendmentSummaries = []domain.AmendmentSummary{}
	}
	if out.ClauseChangeLog == nil {
		out.ClauseChangeLog = []domain.ClauseChange{}
	}
	if out.DocumentIncorporationLog == nil {
		out.DocumentIncorporationLog = []string{}
	}
	return out
}
