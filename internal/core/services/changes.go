package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// ComputeSourceHash hashes every raw byte that feeds a source: the spec file
// (if any), then each .md file in docsDir (if it exists) as filename followed
// by contents, in filename order.
func ComputeSourceHash(specPath, docsDir string) (string, error) {
	h := sha256.New()

	if specPath != "" {
		data, err := os.ReadFile(specPath)
		if err != nil {
			return "", fmt.Errorf("%w: reading spec %s: %v", domain.ErrInvalidInput, specPath, err)
		}
		h.Write(data)
	}

	if docsDir != "" {
		files, err := markdownFiles(docsDir)
		if err != nil {
			return "", err
		}
		for _, name := range files {
			data, err := os.ReadFile(filepath.Join(docsDir, name))
			if err != nil {
				return "", fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, filepath.Join(docsDir, name), err)
			}
			h.Write([]byte(name))
			h.Write(data)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// markdownFiles lists the .md files of dir, sorted. A missing directory has none.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading docs directory %s: %v", domain.ErrInvalidInput, dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ChangeSet is the chunk-level diff between a fresh parse and the store.
type ChangeSet struct {
	// Changed are new chunks or chunks whose content hash differs.
	Changed []domain.Chunk

	// Skipped counts chunks whose content hash is unchanged.
	Skipped int

	// Orphans are stored chunk ids absent from the fresh parse.
	Orphans []string
}

// DiffChunks compares the current parse with the stored chunks of the same
// source. Order of Changed follows current; order of Orphans follows stored.
func DiffChunks(current, stored []domain.Chunk) ChangeSet {
	storedHashes := make(map[string]string, len(stored))
	for _, c := range stored {
		storedHashes[c.ID] = c.ContentHash
	}

	var cs ChangeSet
	currentIDs := make(map[string]bool, len(current))
	for _, c := range current {
		currentIDs[c.ID] = true
		if hash, ok := storedHashes[c.ID]; ok && hash == c.ContentHash {
			cs.Skipped++
			continue
		}
		cs.Changed = append(cs.Changed, c)
	}

	for _, c := range stored {
		if !currentIDs[c.ID] {
			cs.Orphans = append(cs.Orphans, c.ID)
		}
	}

	return cs
}
