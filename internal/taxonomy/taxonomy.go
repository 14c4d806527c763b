// Package taxonomy counts categories and tags across posts and renders the
// navigation widgets built from them.
package taxonomy

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/goliatone/go-blog/internal/posts"
)

// Entry is one category or tag with its post count. Key is the normalized
// form, Name the first seen display casing.
type Entry struct {
	Key   string
	Name  string
	Count int
}

// count tallies values by normalized key, keeping first seen casing and
// first seen order.
func count(list []posts.Post, values func(posts.Post) []string, key func(string) string, label func(string) string) []Entry {
	index := map[string]int{}
	var entries []Entry
	for _, post := range list {
		for _, raw := range values(post) {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			name = label(name)
			k := key(name)
			if i, ok := index[k]; ok {
				entries[i].Count++
				continue
			}
			index[k] = len(entries)
			entries = append(entries, Entry{Key: k, Name: name, Count: 1})
		}
	}
	return entries
}

func identity(s string) string { return s }

// newCollator orders names the way a zh-Hans reader expects. Collators are
// not safe for concurrent use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.SimplifiedChinese)
}

// Categories counts categories and orders them: priority categories first in
// declared order, then by descending count, then by name.
func Categories(list []posts.Post, priority []string) []Entry {
	entries := count(list,
		func(p posts.Post) []string { return p.Categories },
		posts.NormalizeCategory,
		identity,
	)
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		key := posts.NormalizeCategory(name)
		if _, ok := rank[key]; !ok {
			rank[key] = i
		}
	}
	col := newCollator()
	sort.SliceStable(entries, func(i, j int) bool {
		ri, pi := rank[entries[i].Key]
		rj, pj := rank[entries[j].Key]
		switch {
		case pi && pj:
			return ri < rj
		case pi:
			return true
		case pj:
			return false
		}
		return byCountThenName(col, entries[i], entries[j])
	})
	return entries
}

// Tags counts canonical tags ordered by descending count, then by name.
func Tags(list []posts.Post, canon posts.TagCanonicalizer) []Entry {
	entries := count(list,
		func(p posts.Post) []string { return p.Tags },
		posts.NormalizeTag,
		canon.Label,
	)
	col := newCollator()
	sort.SliceStable(entries, func(i, j int) bool {
		return byCountThenName(col, entries[i], entries[j])
	})
	return entries
}

// ByCount orders categories by descending count, then by name, ignoring any
// priority list.
func ByCount(list []posts.Post) []Entry {
	return Categories(list, nil)
}

func byCountThenName(col *collate.Collator, a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return col.CompareString(a.Name, b.Name) < 0
}

// ActiveKey returns key when it is present in entries, otherwise "".
func ActiveKey(entries []Entry, key string) string {
	if key == "" {
		return ""
	}
	for _, e := range entries {
		if e.Key == key {
			return key
		}
	}
	return ""
}

// CategoryDisplayName resolves a raw filter value to the casing used by the
// first post carrying it, falling back to the raw value.
func CategoryDisplayName(list []posts.Post, raw string) string {
	target := posts.NormalizeCategory(raw)
	if target == "" {
		return ""
	}
	for _, post := range list {
		for _, category := range post.Categories {
			if posts.NormalizeCategory(category) == target {
				return category
			}
		}
	}
	return raw
}

// TagDisplayName is the canonical label of raw.
func TagDisplayName(canon posts.TagCanonicalizer, raw string) string {
	return canon.Label(raw)
}
