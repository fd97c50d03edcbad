package domain

// ClassificationBatch is the output of classifying one project's documents.
type ClassificationBatch struct {
	// Documents holds every input document, including failed extractions.
	Documents []Document `json:"documents" yaml:"documents"`

	// ChronologicalOrder is a permutation of the document filenames.
	ChronologicalOrder []string `json:"chronological_order" yaml:"chronological_order"`
}

// Filenames returns the document filenames in input order.
func (b ClassificationBatch) Filenames() []string {
	names := make([]string, len(b.Documents))
	for i := range b.Documents {
		names[i] = b.Documents[i].Filename
	}
	return names
}

// Ordered returns the documents arranged by ChronologicalOrder.
// Filenames missing from the order are appended in input order.
func (b ClassificationBatch) Ordered() []Document {
	byName := make(map[string]int, len(b.Documents))
	for i := range b.Documents {
		byName[b.Documents[i].Filename] = i
	}

	used := make(map[int]bool, len(b.Documents))
	out := make([]Document, 0, len(b.Documents))
	for _, name := range b.ChronologicalOrder {
		idx, ok := byName[name]
		if !ok || used[idx] {
			continue
		}
		used[idx] = true
		out = append(out, b.Documents[idx])
	}
	for i := range b.Documents {
		if !used[i] {
			out = append(out, b.Documents[i])
		}
	}
	return out
}

// IsPermutation reports whether order contains every filename exactly once.
func IsPermutation(order, filenames []string) bool {
	if len(order) != len(filenames) {
		return false
	}
	want := make(map[string]int, len(filenames))
	for _, f := range filenames {
		want[f]++
	}
	for _, f := range order {
		if want[f] == 0 {
			return false
		}
		want[f]--
	}
	return true
}
