package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheVersion is written into every cache file
const CacheVersion = "1.0"

// CacheManager keeps the last fetched conversation list per session on disk
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores metadata about a cache file
type CacheMetadata struct {
	Session      string    `yaml:"session"`
	CacheVersion string    `yaml:"cache_version"`
	FetchedAt    time.Time `yaml:"fetched_at"`
}

// ConversationIndex is the YAML document written per session
type ConversationIndex struct {
	Conversations []ConversationSummary `yaml:"conversations"`
	Metadata      CacheMetadata         `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to a session's conversation index
func (cm *CacheManager) GetIndexPath(session string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("%s.yaml", FileStem(session)))
}

// FileStem turns a session name or conversation id into a single path
// element. Separators become "_" and "." or ".." are never returned.
func FileStem(name string) string {
	stem := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	if stem == "" || stem == "." || stem == ".." {
		return "_"
	}
	return stem
}

// LoadIndex loads the conversation index of a session
func (cm *CacheManager) LoadIndex(session string) (*ConversationIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath(session))
	if err != nil {
		return nil, err
	}

	var index ConversationIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}

	return &index, nil
}

// SaveIndex saves the conversation index of a session
func (cm *CacheManager) SaveIndex(index *ConversationIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	return os.WriteFile(cm.GetIndexPath(index.Metadata.Session), data, 0644)
}

// SaveConversations records a freshly fetched list
func (cm *CacheManager) SaveConversations(session string, list []ConversationSummary) error {
	return cm.SaveIndex(&ConversationIndex{
		Conversations: list,
		Metadata: CacheMetadata{
			Session:      session,
			CacheVersion: CacheVersion,
			FetchedAt:    time.Now(),
		},
	})
}

// LoadConversations returns the cached list and when it was fetched. A
// missing cache is not an error.
func (cm *CacheManager) LoadConversations(session string) ([]ConversationSummary, time.Time, error) {
	index, err := cm.LoadIndex(session)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	if index.Metadata.CacheVersion != CacheVersion {
		LogDebug("Ignoring conversation cache with different version", "version", index.Metadata.CacheVersion)
		return nil, time.Time{}, nil
	}
	return index.Conversations, index.Metadata.FetchedAt, nil
}

// ClearCache removes the index of a session
func (cm *CacheManager) ClearCache(session string) error {
	if err := os.Remove(cm.GetIndexPath(session)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
