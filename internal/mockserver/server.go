// Package mockserver is an in-memory implementation of the ChatLegis HTTP
// API. It answers with canned replies and can emit stored history in either
// historical record schema.
package mockserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Schema selects the shape of history records
type Schema string

const (
	SchemaPrompt Schema = "prompt" // {role, prompt, files}
	SchemaParts  Schema = "parts"  // {role, parts:[{text}]}
	SchemaMixed  Schema = "mixed"  // alternates, starting with prompt
)

// ReplyFunc produces the assistant answer for a turn
type ReplyFunc func(prompt string, category *string, fileName string) string

// Options configure a Server
type Options struct {
	// Token, when set, is the only bearer token accepted. Otherwise any
	// bearer token is.
	Token  string
	Schema Schema
	Reply  ReplyFunc
}

// ChatCall records what a chat request carried on the wire
type ChatCall struct {
	ContentType      string
	Prompt           string
	ConversationID   *string
	DocumentCategory *string
	FileName         string
	FileSize         int
}

type turn struct {
	role  string
	text  string
	files []string
}

type conversation struct {
	id        string
	title     string
	createdAt time.Time
	turns     []turn
	raw       []interface{}
}

type failure struct {
	status int
	body   string
}

// Server is the mock backend
type Server struct {
	mu            sync.Mutex
	opts          Options
	conversations map[string]*conversation
	order         []string
	calls         []ChatCall
	failures      []failure
	engine        *gin.Engine
}

// New creates a Server
func New(opts Options) *Server {
	if opts.Schema == "" {
		opts.Schema = SchemaPrompt
	}
	if opts.Reply == nil {
		opts.Reply = defaultReply
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:          opts,
		conversations: make(map[string]*conversation),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	s.RegisterRoutes(engine, "/api/v1")
	s.engine = engine
	return s
}

func defaultReply(prompt string, category *string, fileName string) string {
	scope := "all documents"
	if category != nil {
		scope = *category
	}
	reply := fmt.Sprintf("Searching %s: you asked %q.", scope, prompt)
	if fileName != "" {
		reply += fmt.Sprintf(" I received %s.", fileName)
	}
	return reply
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

// RegisterRoutes attaches the API routes under prefix
func (s *Server) RegisterRoutes(router *gin.Engine, prefix string) {
	api := router.Group(strings.TrimRight(prefix, "/") + "/chatlegis")
	api.Use(s.authMiddleware(), s.failureMiddleware())
	api.POST("/chat", s.chat)
	api.GET("/conversations", s.listConversations)
	api.GET("/history/:id", s.history)
}

// FailNext makes the next request answer with status and body
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, body: body})
}

// Calls returns every chat request received so far
func (s *Server) Calls() []ChatCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Seed stores a conversation whose history is served verbatim, which lets
// callers inject malformed records
func (s *Server) Seed(id, title string, records []interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		s.order = append(s.order, id)
	}
	s.conversations[id] = &conversation{id: id, title: title, createdAt: time.Now(), raw: records}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		if s.opts.Token != "" && token != s.opts.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Next()
	}
}

func (s *Server) failureMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()
		if f != nil {
			c.Data(f.status, "text/plain; charset=utf-8", []byte(f.body))
			c.Abort()
			return
		}
		c.Next()
	}
}

type chatBody struct {
	Prompt           string  `json:"prompt"`
	ConversationID   *string `json:"conversation_id"`
	DocumentCategory *string `json:"document_category"`
}

func (s *Server) chat(c *gin.Context) {
	call := ChatCall{ContentType: c.ContentType()}

	if strings.HasPrefix(call.ContentType, "multipart/") {
		call.Prompt = c.PostForm("prompt")
		if v, ok := c.GetPostForm("conversation_id"); ok {
			call.ConversationID = &v
		}
		if v, ok := c.GetPostForm("document_category"); ok {
			call.DocumentCategory = &v
		}
		if header, err := c.FormFile("file"); err == nil {
			f, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file"})
				return
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file"})
				return
			}
			call.FileName = header.Filename
			call.FileSize = len(data)
		}
	} else {
		var body chatBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body"})
			return
		}
		call.Prompt = body.Prompt
		call.ConversationID = body.ConversationID
		call.DocumentCategory = body.DocumentCategory
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if strings.TrimSpace(call.Prompt) == "" && call.FileName == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "prompt or file is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var conv *conversation
	if call.ConversationID != nil && *call.ConversationID != "" {
		conv = s.conversations[*call.ConversationID]
		if conv == nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Conversation not found"})
			return
		}
	} else {
		conv = &conversation{
			id:        uuid.NewString(),
			title:     titleFor(call.Prompt, call.FileName),
			createdAt: time.Now(),
		}
		s.conversations[conv.id] = conv
		s.order = append(s.order, conv.id)
	}

	reply := s.opts.Reply(call.Prompt, call.DocumentCategory, call.FileName)

	userTurn := turn{role: "user", text: call.Prompt}
	if call.FileName != "" {
		userTurn.files = []string{call.FileName}
	}
	conv.turns = append(conv.turns, userTurn, turn{role: "assistant", text: reply})

	c.JSON(http.StatusOK, gin.H{
		"ai_response":     reply,
		"conversation_id": conv.id,
	})
}

func titleFor(prompt, fileName string) string {
	title := strings.TrimSpace(prompt)
	if title == "" {
		title = fileName
	}
	if runes := []rune(title); len(runes) > 40 {
		title = strings.TrimSpace(string(runes[:40])) + "..."
	}
	return title
}

func (s *Server) listConversations(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]gin.H, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		conv := s.conversations[s.order[i]]
		list = append(list, gin.H{"id": conv.id, "title": conv.title})
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) history(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Conversation not found"})
		return
	}
	if conv.raw != nil {
		c.JSON(http.StatusOK, conv.raw)
		return
	}

	records := make([]gin.H, 0, len(conv.turns))
	for i, t := range conv.turns {
		schema := s.opts.Schema
		if schema == SchemaMixed {
			schema = SchemaPrompt
			if i%2 == 1 {
				schema = SchemaParts
			}
		}
		records = append(records, renderRecord(schema, t))
	}
	c.JSON(http.StatusOK, records)
}

func renderRecord(schema Schema, t turn) gin.H {
	if schema == SchemaParts {
		role := t.role
		if role == "assistant" {
			role = "model"
		}
		return gin.H{"role": role, "parts": []gin.H{{"text": t.text}}}
	}
	files := make([]gin.H, 0, len(t.files))
	for _, f := range t.files {
		files = append(files, gin.H{"name": f})
	}
	return gin.H{"role": t.role, "prompt": t.text, "files": files}
}
