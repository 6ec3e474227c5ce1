package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatlegis/internal"
)

// Exporter writes a session transcript in one file format
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// Formats lists the accepted --format values in help order
var Formats = []string{"jsonl", "md", "yaml", "json"}

// NewExporter picks the exporter for format. Matching ignores case and
// surrounding space, and "markdown" is accepted for md.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	}
	return nil, fmt.Errorf("unknown export format %q (supported: %s)", format, strings.Join(Formats, ", "))
}
