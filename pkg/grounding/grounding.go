// Package grounding turns tool responses into grounding files: the cited
// source snippets shown to the user next to an answer.
package grounding

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// File is one cited source snippet.
type File struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// Source is one entry of a tool result as produced by the middle tier.
type Source struct {
	ChunkID string `json:"chunk_id"`
	Title   string `json:"title"`
	Chunk   string `json:"chunk"`
}

// ToolResult is the JSON document carried in a tool response.
type ToolResult struct {
	Sources []Source `json:"sources"`
}

// ParseToolResult decodes the tool_result string of a tool response and
// returns one File per source, in order.
func ParseToolResult(s string) ([]File, error) {
	var result ToolResult
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("grounding: parse tool result: %w", err)
	}
	files := make([]File, 0, len(result.Sources))
	for _, src := range result.Sources {
		files = append(files, File{
			ID:      src.ChunkID,
			Name:    src.Title,
			Content: src.Chunk,
		})
	}
	return files, nil
}

// List is an append-only, ordered list of grounding files.
// It is safe for concurrent use.
type List struct {
	mu    sync.RWMutex
	files []File
}

// Append adds files to the end of the list.
func (l *List) Append(files ...File) {
	if len(files) == 0 {
		return
	}
	l.mu.Lock()
	l.files = append(l.files, files...)
	l.mu.Unlock()
}

// Files returns a copy of the list.
func (l *List) Files() []File {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.files)
}

// Len returns the number of files.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}

// Find returns the first file with the given id.
func (l *List) Find(id string) (File, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := slices.IndexFunc(l.files, func(f File) bool { return f.ID == id })
	if i < 0 {
		return File{}, false
	}
	return l.files[i], true
}
