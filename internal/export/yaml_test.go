package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chatlegis/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.Session
		wantErr bool
	}{
		{
			name:    "basic session",
			session: internal.CreateTestSession("test1"),
			wantErr: false,
		},
		{
			name:    "empty session",
			session: internal.CreateTestSessionWithMessages("test2", []internal.Message{}),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &YAMLExporter{}

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("YAMLExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				var session internal.Session
				if err := yaml.Unmarshal([]byte(output), &session); err != nil {
					t.Errorf("Output is not valid YAML: %v\nOutput: %s", err, output)
					return
				}

				if !strings.Contains(output, tt.session.ConversationID) {
					t.Errorf("Output should contain conversation id %q", tt.session.ConversationID)
				}
				if session.Category != tt.session.Category {
					t.Errorf("Category = %q, want %q", session.Category, tt.session.Category)
				}
			}
		})
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	exporter := &YAMLExporter{}
	if got := exporter.Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
