// Package identity builds the deterministic identifiers that let chunks keep
// their identity across ingestion runs.
//
// Every function here is pure. Chunk diffing compares ids produced by two
// separate parses, so any change to these formats re-embeds every stored
// chunk.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SourceID derives a stable UUID (version 5, DNS namespace) from a source name.
func SourceID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}

// OverviewID is the id of a spec's single overview chunk.
func OverviewID(sourceID string) string {
	return sourceID + ":overview"
}

// EndpointID keys an operation on its method and path.
func EndpointID(sourceID, method, path string) string {
	return sourceID + ":endpoint:" + strings.ToUpper(method) + ":" + path
}

// SchemaID keys a component schema on its name.
func SchemaID(sourceID, name string) string {
	return sourceID + ":schema:" + name
}

// DocID keys a markdown section on its file and heading path. A splitIndex
// below zero means the section was not split.
func DocID(sourceID, filename string, headings []string, splitIndex int) string {
	base := strings.TrimSuffix(filename, ".md")
	slugs := make([]string, len(headings))
	for i, h := range headings {
		slugs[i] = Slugify(h)
	}
	id := sourceID + ":doc:" + base + ":" + strings.Join(slugs, "/")
	if splitIndex >= 0 {
		id += ":" + strconv.Itoa(splitIndex)
	}
	return id
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters to "-".
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ContentHash is the hex sha256 of a chunk body.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
