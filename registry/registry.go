// Package registry tracks which companies have been ingested. It is
// incidental bookkeeping kept in a JSON file next to the data directory;
// the core reads it for the companies endpoint and the ingest path updates
// it after a successful run. The vector store remains the source of truth
// for chunk data.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry records one ingested company.
type Entry struct {
	IngestedAt   string `json:"ingested_at"`
	ChunksCount  int    `json:"chunks_count"`
	SourcesCount int    `json:"sources_count"`
	LastUpdated  string `json:"last_updated"`
	RunID        string `json:"run_id,omitempty"`
}

// Registry is a file-backed company registry.
type Registry struct {
	path string
}

// New creates a registry stored at path.
func New(path string) *Registry {
	return &Registry{path: path}
}

// Load reads the registry file. A missing file is an empty registry.
func (r *Registry) Load() (map[string]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	entries := map[string]Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return entries, nil
}

func (r *Registry) save(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Register records a successful ingestion. Companies with zero chunks are
// not registered.
func (r *Registry) Register(companyName string, chunksCount, sourcesCount int, runID string) error {
	if chunksCount <= 0 {
		return nil
	}

	entries, err := r.Load()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	entry := Entry{
		IngestedAt:   now,
		ChunksCount:  chunksCount,
		SourcesCount: sourcesCount,
		LastUpdated:  now,
		RunID:        runID,
	}
	if prev, ok := entries[companyName]; ok && prev.IngestedAt != "" {
		entry.IngestedAt = prev.IngestedAt
	}
	entries[companyName] = entry

	return r.save(entries)
}

// Unregister removes a company, e.g. when a force refresh deletes its data.
func (r *Registry) Unregister(companyName string) error {
	entries, err := r.Load()
	if err != nil {
		return err
	}
	if _, ok := entries[companyName]; !ok {
		return nil
	}
	delete(entries, companyName)
	return r.save(entries)
}

// Companies lists registered companies that actually have data, sorted.
func (r *Registry) Companies() ([]string, error) {
	entries, err := r.Load()
	if err != nil {
		return nil, err
	}

	var names []string
	for name, entry := range entries {
		if entry.ChunksCount > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Cleanup drops zero-chunk entries and returns how many were removed.
func (r *Registry) Cleanup() (int, error) {
	entries, err := r.Load()
	if err != nil {
		return 0, err
	}

	removed := 0
	for name, entry := range entries {
		if entry.ChunksCount == 0 {
			delete(entries, name)
			removed++
		}
	}
	if removed > 0 {
		if err := r.save(entries); err != nil {
			return 0, err
		}
	}
	return removed, nil
}
