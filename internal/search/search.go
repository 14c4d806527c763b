// Package search ranks posts against a free text query.
package search

import (
	"sort"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

// Field weights.
const (
	TitleWeight    = 5
	CategoryWeight = 2
	TagWeight      = 2
	SummaryWeight  = 1
)

// Match is a post with its accumulated score.
type Match struct {
	Post  posts.Post
	Score int
}

// Keywords lowercases query and splits it on whitespace.
func Keywords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score ranks posts by keyword hits. Every keyword adds the weight of each
// field containing it. Posts scoring zero are dropped; ties keep the newer
// post first.
func Score(list []posts.Post, query string) []Match {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(list))
	for _, post := range list {
		title := strings.ToLower(post.Title)
		categories := strings.ToLower(strings.Join(post.Categories, " "))
		tags := strings.ToLower(strings.Join(post.Tags, " "))
		summary := strings.ToLower(posts.SummaryText(post))

		score := 0
		for _, keyword := range keywords {
			if strings.Contains(title, keyword) {
				score += TitleWeight
			}
			if strings.Contains(categories, keyword) {
				score += CategoryWeight
			}
			if strings.Contains(tags, keyword) {
				score += TagWeight
			}
			if strings.Contains(summary, keyword) {
				score += SummaryWeight
			}
		}
		if score > 0 {
			matches = append(matches, Match{Post: post, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return posts.Timestamp(matches[i].Post.CreatedAt) > posts.Timestamp(matches[j].Post.CreatedAt)
	})
	return matches
}

// Posts unwraps matches.
func Posts(matches []Match) []posts.Post {
	out := make([]posts.Post, len(matches))
	for i, m := range matches {
		out[i] = m.Post
	}
	return out
}
