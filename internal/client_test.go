package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Auth        string
	Body        []byte
	Form        map[string][]string
	FileName    string
	FileData    []byte
}

// newCaptureServer answers every request with status/body and records it
func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
		}
		if strings.HasPrefix(c.ContentType, "multipart/") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm() error = %v", err)
			}
			c.Form = r.MultipartForm.Value
			if files := r.MultipartForm.File["file"]; len(files) == 1 {
				c.FileName = files[0].Filename
				f, _ := files[0].Open()
				c.FileData, _ = io.ReadAll(f)
				_ = f.Close()
			}
		} else {
			c.Body, _ = io.ReadAll(r.Body)
		}
		captured = append(captured, c)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestClient(baseURL string) *Client {
	return NewClient(NewTransport(time.Second), NewEndpoints(baseURL, DefaultAPIPrefix))
}

func TestNewEndpoints(t *testing.T) {
	e := NewEndpoints("http://host:8000/", "/api/v1/")
	if e.Chat != "http://host:8000/api/v1/chatlegis/chat" {
		t.Errorf("Chat = %q", e.Chat)
	}
	if e.Conversations != "http://host:8000/api/v1/chatlegis/conversations" {
		t.Errorf("Conversations = %q", e.Conversations)
	}
	if got := e.HistoryURL("a b/c"); got != "http://host:8000/api/v1/chatlegis/history/a%20b%2Fc" {
		t.Errorf("HistoryURL() = %q", got)
	}
}

func TestClient_ChatJSONSendsExplicitNulls(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `{"ai_response":"Article 184 ...","conversation_id":"c1"}`)
	client := newTestClient(srv.URL)

	reply, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{
		Prompt:   "What is Article 184?",
		Category: CategoryGeneral,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Reply != "Article 184 ..." || reply.ConversationID != "c1" {
		t.Errorf("Chat() = %+v", reply)
	}

	req := (*captured)[0]
	if req.Method != http.MethodPost || req.Path != "/api/v1/chatlegis/chat" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if req.Auth != "Bearer tok" {
		t.Errorf("Authorization = %q", req.Auth)
	}
	if req.ContentType != "application/json" {
		t.Errorf("Content-Type = %q", req.ContentType)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	for _, key := range []string{"conversation_id", "document_category"} {
		v, present := body[key]
		if !present {
			t.Errorf("%s must be present", key)
		}
		if v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
	if body["prompt"] != "What is Article 184?" {
		t.Errorf("prompt = %v", body["prompt"])
	}
}

func TestClient_ChatJSONCarriesScope(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `{"ai_response":"ok","conversation_id":"c1"}`)
	client := newTestClient(srv.URL)

	_, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{
		Prompt:         "And 185?",
		ConversationID: "c1",
		Category:       CategoryStatutes,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	var body map[string]interface{}
	_ = json.Unmarshal((*captured)[0].Body, &body)
	if body["conversation_id"] != "c1" || body["document_category"] != "Statutes" {
		t.Errorf("body = %v", body)
	}
}

func TestClient_ChatMultipartOmitsNulls(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `{"ai_response":"got it","conversation_id":"c2"}`)
	client := newTestClient(srv.URL)

	attachment := CreateTestAttachment("lease.pdf", 64)
	_, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{
		Prompt:     "Summarise",
		Category:   CategoryGeneral,
		Attachment: attachment,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	req := (*captured)[0]
	if !strings.HasPrefix(req.ContentType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q", req.ContentType)
	}
	if got := req.Form["prompt"]; len(got) != 1 || got[0] != "Summarise" {
		t.Errorf("prompt field = %v", got)
	}
	if _, ok := req.Form["conversation_id"]; ok {
		t.Error("conversation_id should be omitted when unset")
	}
	if _, ok := req.Form["document_category"]; ok {
		t.Error("document_category should be omitted for General")
	}
	if req.FileName != "lease.pdf" || len(req.FileData) != 64 {
		t.Errorf("file part = %s/%d bytes", req.FileName, len(req.FileData))
	}
}

func TestClient_ChatMultipartCarriesFields(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `{"ai_response":"ok","conversation_id":"c3"}`)
	client := newTestClient(srv.URL)

	_, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{
		Prompt:         "",
		ConversationID: "c3",
		Category:       CategoryContracts,
		Attachment:     CreateTestAttachment("memo.wav", 2000),
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	form := (*captured)[0].Form
	if form["conversation_id"][0] != "c3" || form["document_category"][0] != "Contracts" {
		t.Errorf("form = %v", form)
	}
}

func TestClient_ChatMissingReply(t *testing.T) {
	srv, _ := newCaptureServer(t, 200, `{"conversation_id":"c9"}`)
	client := newTestClient(srv.URL)

	reply, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{Prompt: "hi"})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
	if reply == nil || reply.Reply != ReplyMissing || reply.ConversationID != "c9" {
		t.Errorf("Chat() reply = %+v", reply)
	}
}

func TestClient_ChatNotJSON(t *testing.T) {
	srv, _ := newCaptureServer(t, 200, `not json`)
	client := newTestClient(srv.URL)

	reply, err := client.Chat(context.Background(), NewAuth("tok"), ChatRequest{Prompt: "hi"})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
	if reply != nil {
		t.Errorf("reply = %+v, want nil", reply)
	}
}

func TestClient_Unauthenticated(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `[]`)
	client := newTestClient(srv.URL)
	ctx := context.Background()

	if _, err := client.Chat(ctx, NewAuth(""), ChatRequest{Prompt: "hi"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Chat() error = %v", err)
	}
	if _, err := client.Conversations(ctx, NewAuth("")); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Conversations() error = %v", err)
	}
	if _, err := client.History(ctx, NewAuth(""), "c1"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("History() error = %v", err)
	}
	if len(*captured) != 0 {
		t.Errorf("%d requests issued without a token", len(*captured))
	}
}

func TestClient_Conversations(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `[{"id":"c1","title":"Article 184"},{"id":42,"title":"Numeric"},{"id":null,"title":"Broken"}]`)
	client := newTestClient(srv.URL)

	list, err := client.Conversations(context.Background(), NewAuth("tok"))
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	want := []ConversationSummary{{ID: "c1", Title: "Article 184"}, {ID: "42", Title: "Numeric"}}
	if len(list) != len(want) {
		t.Fatalf("Conversations() = %v, want %v", list, want)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("Conversations()[%d] = %v, want %v", i, list[i], want[i])
		}
	}
	if (*captured)[0].Method != http.MethodGet || (*captured)[0].Path != "/api/v1/chatlegis/conversations" {
		t.Errorf("request = %+v", (*captured)[0])
	}
}

func TestClient_History(t *testing.T) {
	srv, captured := newCaptureServer(t, 200, `[{"role":"user","prompt":"hi"},{"role":"assistant","parts":[{"text":"hello"}]}]`)
	client := newTestClient(srv.URL)

	records, err := client.History(context.Background(), NewAuth("tok"), "c1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("History() returned %d records", len(records))
	}
	if (*captured)[0].Path != "/api/v1/chatlegis/history/c1" {
		t.Errorf("path = %q", (*captured)[0].Path)
	}
}

func TestClient_HistoryNotArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object", body: `{"detail":"oops"}`},
		{name: "null", body: `null`},
		{name: "string", body: `"history"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newCaptureServer(t, 200, tt.body)
			client := newTestClient(srv.URL)

			records, err := client.History(context.Background(), NewAuth("tok"), "c1")
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("error = %v, want MalformedResponseError", err)
			}
			if records != nil {
				t.Errorf("records = %v, want nil", records)
			}
		})
	}
}

func TestClient_NullBodies(t *testing.T) {
	srv, _ := newCaptureServer(t, 200, `null`)
	client := newTestClient(srv.URL)
	ctx := context.Background()
	var malformed *MalformedResponseError

	reply, err := client.Chat(ctx, NewAuth("tok"), ChatRequest{Prompt: "hi", Category: CategoryGeneral})
	if !errors.As(err, &malformed) {
		t.Errorf("Chat() error = %v, want MalformedResponseError", err)
	}
	if reply != nil {
		t.Errorf("Chat() reply = %+v, want nil", reply)
	}

	list, err := client.Conversations(ctx, NewAuth("tok"))
	if !errors.As(err, &malformed) {
		t.Errorf("Conversations() error = %v, want MalformedResponseError", err)
	}
	if list != nil {
		t.Errorf("Conversations() = %v, want nil", list)
	}
}

func TestClient_EmptyArraysAreValid(t *testing.T) {
	srv, _ := newCaptureServer(t, 200, `[]`)
	client := newTestClient(srv.URL)

	records, err := client.History(context.Background(), NewAuth("tok"), "c1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("History() = %v, want empty", records)
	}

	list, err := client.Conversations(context.Background(), NewAuth("tok"))
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Conversations() = %v, want empty", list)
	}
}

func TestOpaqueID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `"abc"`, want: "abc"},
		{raw: `17`, want: "17"},
		{raw: `null`, want: ""},
		{raw: ``, want: ""},
		{raw: `{"x":1}`, want: ""},
	}
	for _, tt := range tests {
		if got := opaqueID(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("opaqueID(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
