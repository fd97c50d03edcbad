// Package docx extracts text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// documentPart is the main body inside the archive.
const documentPart = "word/document.xml"

// cellEnd marks the end of a table cell until cells are joined.
const cellEnd = "\x1f"

// maxDocumentXML bounds how much of document.xml is read.
const maxDocumentXML = 64 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Extract returns the body text, one line per paragraph.
// Deleted tracked changes are skipped; inserted ones are kept.
func (n *Normaliser) Extract(_ context.Context, filename string, content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrInvalidInput, filename, err)
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, documentPart, err)
		}
		defer rc.Close()

		text, err := parseDocumentXML(io.LimitReader(rc, maxDocumentXML))
		if err != nil {
			return "", fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, documentPart, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %s has no %s", domain.ErrInvalidInput, filename, documentPart)
}

// parseDocumentXML walks the WordprocessingML token stream. Paragraphs
// nested in tables are read in document order; cells are separated by tabs.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tc":
				sb.WriteString(cellEnd)
			case "tr":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return plaintext.Clean(collapseCells(sb.String())), nil
}

// collapseCells joins the cells of a table row with tabs so the row reads
// as one line.
func collapseCells(text string) string {
	text = strings.ReplaceAll(text, "\n"+cellEnd, "\t")
	return strings.ReplaceAll(text, cellEnd, "\t")
}
