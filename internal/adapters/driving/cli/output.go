package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// render writes v to stdout in the selected structured format, or calls
// text for the human-readable one.
func render(cmd *cobra.Command, v any, text func()) error {
	switch outputFormat {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		text()
	}
	return nil
}

// withoutText drops document text so structured output stays readable.
func withoutText(batch *domain.ClassificationBatch) *domain.ClassificationBatch {
	out := &domain.ClassificationBatch{
		Documents:          make([]domain.Document, len(batch.Documents)),
		ChronologicalOrder: batch.ChronologicalOrder,
	}
	for i, doc := range batch.Documents {
		doc.Text = ""
		out.Documents[i] = doc
	}
	return out
}

func printBatch(cmd *cobra.Command, batch *domain.ClassificationBatch) {
	docs := batch.Ordered()
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return
	}

	cmd.Println("Documents (chronological):")
	cmd.Println()
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  [%d] %s\n", i+1, d.Filename)
		cmd.Printf("      Role: %s  Date: %s", d.Role, d.DisplayDate())
		if d.Amends != "" {
			cmd.Printf("  Amends: %s", d.Amends)
		}
		if d.Source != "" {
			cmd.Printf("  (%s)", d.Source)
		}
		cmd.Println()
		if d.ExtractionError != "" {
			cmd.Printf("      Extraction failed: %s\n", d.ExtractionError)
		}
	}
}

func printResult(cmd *cobra.Command, r *domain.MergeResult) {
	cmd.Printf("Result %s (%s)\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	if r.Fallback {
		cmd.Println("Note: the generative service was unavailable; this is a metadata-only summary.")
	}
	cmd.Println()

	cmd.Println("[Summary]")
	cmd.Printf("  %s\n", r.BaseSummary)
	cmd.Println()

	if len(r.AmendmentSummaries) > 0 {
		cmd.Println("[Amendments]")
		for _, a := range r.AmendmentSummaries {
			cmd.Printf("  %s (%s)\n", a.Document, a.Role)
			for _, c := range a.Changes {
				cmd.Printf("    - %s\n", c)
			}
		}
		cmd.Println()
	}

	if len(r.ClauseChangeLog) > 0 {
		cmd.Println("[Clause Changes]")
		for _, c := range r.ClauseChangeLog {
			cmd.Printf("  %s %s: %s\n", c.Section, strings.ToUpper(string(c.ChangeType)), c.Summary)
		}
		cmd.Println()
	}

	cmd.Println("[Incorporated Documents]")
	for _, line := range r.DocumentIncorporationLog {
		cmd.Printf("  %s\n", line)
	}
	cmd.Println()

	cmd.Println("[Final Contract]")
	cmd.Println(r.FinalContract)
}
