package cache

import (
	"fmt"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// Cache keys and prefixes for session data
const (
	// KeyProfiles is the cache key for the current account's profile list
	KeyProfiles = "profiles"

	// PrefixDetails is the prefix for resolved detail payloads (details:{kind}:{id})
	PrefixDetails = "details:"

	// PrefixList is the prefix for list membership (mylist:{profileID})
	PrefixList = "mylist:"

	// PrefixRow is the prefix for resolved catalog rows (row:{name})
	PrefixRow = "row:"

	// PrefixSearch is the prefix for resolved search pages (search:{page}:{query})
	PrefixSearch = "search:"
)

// DetailsKey returns the key for a resolved detail payload.
func DetailsKey(kind domain.MediaKind, id int64) string {
	return fmt.Sprintf("%s%s:%d", PrefixDetails, kind, id)
}

// ListKey returns the key for a profile's list.
func ListKey(profileID int64) string {
	return fmt.Sprintf("%s%d", PrefixList, profileID)
}

// RowKey returns the key for a resolved catalog row.
func RowKey(name string) string {
	return PrefixRow + name
}

// SearchKey returns the key for one page of search results. Queries differing
// only in case or surrounding space share a key.
func SearchKey(query string, page int) string {
	return fmt.Sprintf("%s%d:%s", PrefixSearch, max(page, 1), strings.ToLower(strings.TrimSpace(query)))
}

// ProfileScopedPrefixes returns the prefixes dropped on a profile switch.
func ProfileScopedPrefixes() []string {
	return []string{PrefixDetails, PrefixRow}
}
