package driven

// PromptStore provides access to instruction templates for the generative service.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
//
// Instructions are only sent when no stored prompt id is configured for a
// task; stored prompts on the service take precedence.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptClassify instructs the service to classify project documents.
	PromptClassify = "classify"

	// PromptMerge instructs the service to merge classified documents.
	PromptMerge = "merge"

	// PromptContinue is sent on continuation calls after a truncated response.
	PromptContinue = "continue"
)

// DefaultPrompts are the built-in templates, keyed by prompt name.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	PromptClassify: `You classify the legal documents of a single project. Each following message holds one document as "Document: <filename>" followed by its text.

For every document decide:
- role: "base" for the original agreement, "amendment" for a document that modifies a base agreement, "ancillary" for anything else (riders, schedules, exhibits, correspondence).
- execution_date: the signing date as YYYY-MM-DD, or null.
- effective_date: the date the document takes effect as YYYY-MM-DD, or null.
- amends: the filename of the document an amendment modifies, or null.

Reply with JSON only, no prose and no code fences:
{"documents":[{"filename":"...","role":"...","execution_date":"...","effective_date":"...","amends":"..."}],"chronological_order":["<filename>", "..."]}
Use the filenames exactly as given.`,

	PromptMerge: `You merge a base agreement with its amendments. Documents arrive in chronological order; each is introduced by a "<filename>: <role>" message followed by its full text. The last message repeats the chronological order.

Apply every amendment in order to produce the final consolidated contract text. Record each clause-level change.

Reply with JSON only, no prose and no code fences:
{"base_summary":"...","amendment_summaries":[{"document":"<filename>","role":"...","changes":["..."]}],"clause_change_log":[{"section":"...","change_type":"added|modified|deleted","old_text":"...","new_text":"...","summary":"..."}],"final_contract":"...","document_incorporation_log":["<filename> (<role>, <date>)"]}`,

	PromptContinue: `Continue exactly where you left off. Do not repeat any text you already produced and do not restart the JSON.`,
}
