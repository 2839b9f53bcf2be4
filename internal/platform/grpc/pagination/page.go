// Package pagination normalizes page sizes and opaque page tokens for list
// endpoints.
package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Cursor is the state behind an opaque page token.
type Cursor struct {
	// Seq is the last sequence number of the previous page.
	Seq int64 `json:"seq"`
	// FilterHash invalidates the token when the filter changes.
	FilterHash string `json:"filter_hash,omitempty"`
}

// EncodeCursor turns a sequence cursor into an opaque page token bound to
// filter.
func EncodeCursor(seq int64, filter string) string {
	if seq <= 0 {
		return ""
	}
	data, err := json.Marshal(Cursor{Seq: seq, FilterHash: HashFilter(filter)})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses a page token produced by EncodeCursor and checks it
// was issued for filter. An empty token decodes to zero, the start of the
// listing.
func DecodeCursor(token, filter string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.Seq <= 0 {
		return 0, fmt.Errorf("invalid cursor seq %d", c.Seq)
	}
	if c.FilterHash != HashFilter(filter) {
		return 0, fmt.Errorf("filter changed since cursor was created")
	}
	return c.Seq, nil
}

// HashFilter computes a short hash of the filter string for cursor
// validation. Returns empty string for empty filter.
func HashFilter(filter string) string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return ""
	}
	h := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(h[:8])
}
