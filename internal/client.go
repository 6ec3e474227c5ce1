package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
)

// DefaultBaseURL and DefaultAPIPrefix locate a locally running backend
const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultAPIPrefix = "/api/v1"
)

// Endpoints are the three ChatLegis routes
type Endpoints struct {
	Chat          string
	Conversations string
	History       string
}

// NewEndpoints joins base URL and API prefix into route URLs
func NewEndpoints(baseURL, apiPrefix string) Endpoints {
	root := strings.TrimRight(baseURL, "/") + "/" + strings.Trim(apiPrefix, "/") + "/chatlegis"
	return Endpoints{
		Chat:          root + "/chat",
		Conversations: root + "/conversations",
		History:       root + "/history",
	}
}

// HistoryURL returns the history route for one conversation
func (e Endpoints) HistoryURL(conversationID string) string {
	return e.History + "/" + url.PathEscape(conversationID)
}

// ChatRequest is one turn as sent to the backend
type ChatRequest struct {
	Prompt         string
	ConversationID string
	Category       Category
	Attachment     *Attachment
}

// ChatReply is the backend's answer to a turn
type ChatReply struct {
	Reply          string
	ConversationID string
}

type chatBody struct {
	Prompt           string  `json:"prompt"`
	ConversationID   *string `json:"conversation_id"`
	DocumentCategory *string `json:"document_category"`
}

type chatResponse struct {
	AIResponse     *string         `json:"ai_response"`
	ConversationID json.RawMessage `json:"conversation_id"`
}

type conversationResponse struct {
	ID    json.RawMessage `json:"id"`
	Title string          `json:"title"`
}

// Client talks to the ChatLegis HTTP API
type Client struct {
	transport *Transport
	endpoints Endpoints
}

// NewClient creates a Client over the given transport
func NewClient(transport *Transport, endpoints Endpoints) *Client {
	return &Client{transport: transport, endpoints: endpoints}
}

// Endpoints returns the routes this client calls
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Chat sends one turn. Without an attachment the body is JSON with explicit
// nulls; with one it is a multipart form carrying a binary "file" part.
//
// When the backend answers with valid JSON that lacks ai_response, Chat
// returns both a reply (carrying ReplyMissing and the returned conversation
// id) and a MalformedResponseError. A null body returns no reply.
func (c *Client) Chat(ctx context.Context, auth Auth, req ChatRequest) (*ChatReply, error) {
	header, err := auth.Header()
	if err != nil {
		return nil, err
	}

	var body []byte
	var contentType string
	if req.Attachment != nil {
		body, contentType, err = encodeMultipartChat(req)
	} else {
		body, contentType, err = encodeJSONChat(req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	resp, err := c.transport.Post(ctx, c.endpoints.Chat, body, contentType, header)
	if err != nil {
		return nil, err
	}

	var decoded *chatResponse
	if err := DecodeJSON(resp, &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, nullBodyError(resp)
	}

	reply := &ChatReply{ConversationID: opaqueID(decoded.ConversationID)}
	if decoded.AIResponse == nil {
		reply.Reply = ReplyMissing
		return reply, &MalformedResponseError{URL: resp.URL, Body: string(resp.Body), Err: fmt.Errorf("missing ai_response field")}
	}
	reply.Reply = *decoded.AIResponse
	return reply, nil
}

// Conversations lists the stored conversations of the authenticated user
func (c *Client) Conversations(ctx context.Context, auth Auth) ([]ConversationSummary, error) {
	header, err := auth.Header()
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Get(ctx, c.endpoints.Conversations, header)
	if err != nil {
		return nil, err
	}

	var decoded []conversationResponse
	if err := DecodeJSON(resp, &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, nullBodyError(resp)
	}

	list := make([]ConversationSummary, 0, len(decoded))
	for _, item := range decoded {
		id := opaqueID(item.ID)
		if id == "" {
			LogDebug("Skipping conversation without id", "title", item.Title)
			continue
		}
		list = append(list, ConversationSummary{ID: id, Title: item.Title})
	}
	return list, nil
}

// History fetches the raw stored records of one conversation. Records are
// left undecoded so each can fail on its own.
func (c *Client) History(ctx context.Context, auth Auth, conversationID string) ([]json.RawMessage, error) {
	header, err := auth.Header()
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Get(ctx, c.endpoints.HistoryURL(conversationID), header)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := DecodeJSON(resp, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, nullBodyError(resp)
	}
	return records, nil
}

// nullBodyError reports a JSON null where an object or array was required
func nullBodyError(resp *Response) error {
	return &MalformedResponseError{URL: resp.URL, Body: string(resp.Body), Err: fmt.Errorf("response body is null")}
}

func encodeJSONChat(req ChatRequest) ([]byte, string, error) {
	body := chatBody{
		Prompt:           req.Prompt,
		DocumentCategory: req.Category.Scope(),
	}
	if req.ConversationID != "" {
		id := req.ConversationID
		body.ConversationID = &id
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// encodeMultipartChat omits null fields, since a form cannot express null
func encodeMultipartChat(req ChatRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("prompt", req.Prompt); err != nil {
		return nil, "", err
	}
	if req.ConversationID != "" {
		if err := w.WriteField("conversation_id", req.ConversationID); err != nil {
			return nil, "", err
		}
	}
	if scope := req.Category.Scope(); scope != nil {
		if err := w.WriteField("document_category", *scope); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", req.Attachment.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Attachment.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// opaqueID accepts string or numeric identifiers; null yields ""
func opaqueID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
