package content

import (
	"regexp"
	"strings"

	"github.com/devops-autopost/internal/models"
)

// A hashtag starts the text or follows whitespace
var hashtagPattern = regexp.MustCompile(`(?:^|\s)(#[\p{L}\p{N}_]+)`)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// ExtractHashtags returns hashtags in order of appearance, duplicates included
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// CapHashtags keeps the first limit distinct hashtags (case-insensitive) and
// removes repeats and anything past the cap. Text already within the cap
// is returned unchanged, so the operation is idempotent.
func CapHashtags(text string, limit int) string {
	if limit < 0 {
		limit = 0
	}

	matches := hashtagPattern.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[string]bool)
	var drop [][2]int

	for _, m := range matches {
		start, end := m[2], m[3]
		key := strings.ToLower(text[start:end])
		if seen[key] || len(seen) >= limit {
			// take the whitespace run before the tag with it
			from := start
			for from > 0 && (text[from-1] == ' ' || text[from-1] == '\t') {
				from--
			}
			// and whatever is glued to its end, e.g. "#a#b" or "#a!"
			to := end
			for to < len(text) && !isSpaceByte(text[to]) {
				to++
			}
			drop = append(drop, [2]int{from, to})
			continue
		}
		seen[key] = true
	}

	if len(drop) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, d := range drop {
		if d[0] < last {
			d[0] = last
		}
		b.WriteString(text[last:d[0]])
		last = d[1]
	}
	b.WriteString(text[last:])

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimRight(out, "\n")
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// TopicHashtags returns the base hashtags followed by up to two tags for
// each topic keyword matched in the topic title or keywords.
func TopicHashtags(pools Pools, topic models.Topic) []string {
	haystack := strings.ToLower(topic.Title + " " + strings.Join(topic.Keywords, " "))

	tags := make([]string, 0, len(pools.BaseHashtags)+4)
	seen := make(map[string]bool)
	add := func(tag string) {
		k := strings.ToLower(tag)
		if !seen[k] {
			seen[k] = true
			tags = append(tags, tag)
		}
	}

	for _, tag := range pools.BaseHashtags {
		add(tag)
	}
	for _, tt := range pools.TopicHashtags {
		if !strings.Contains(haystack, tt.Keyword) {
			continue
		}
		for i, tag := range tt.Tags {
			if i == 2 {
				break
			}
			add(tag)
		}
	}

	return tags
}
