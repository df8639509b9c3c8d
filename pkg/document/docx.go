package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/fumiama/go-docx"
)

// extractDOCX returns the body text of a Word document. Paragraphs are
// separated by blank lines; table rows become one line with cells joined
// by " | ".
func extractDOCX(data []byte) (*Document, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error procesando DOCX: %w", err)
	}

	var blocks []string
	for _, item := range doc.Document.Body.Items {
		var text string
		switch it := item.(type) {
		case *docx.Paragraph:
			text = it.String()
		case *docx.Table:
			text = tableText(it)
		}
		if strings.TrimSpace(text) != "" {
			blocks = append(blocks, text)
		}
	}

	return &Document{
		Content:  strings.TrimSpace(strings.Join(blocks, "\n\n")),
		Metadata: storage.DocumentMetadata{Type: TypeDOCX},
	}, nil
}

func tableText(t *docx.Table) string {
	rows := make([]string, 0, len(t.TableRows))
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			paras := make([]string, 0, len(cell.Paragraphs))
			for _, p := range cell.Paragraphs {
				if s := strings.TrimSpace(p.String()); s != "" {
					paras = append(paras, s)
				}
			}
			cells = append(cells, strings.Join(paras, " "))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}
