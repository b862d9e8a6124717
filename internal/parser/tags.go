package parser

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`@([\p{L}\p{N}_\-/?:,]+)`)

// ExtractTags returns the raw tag tokens on a line, without their leading @.
func ExtractTags(line string) []string {
	matches := tagPattern.FindAllStringSubmatch(line, -1)
	var tags []string
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// Normalize replaces underscores with spaces. It is applied to override keys
// and values, never to plain labels.
func Normalize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// InterpretOverride splits a Key:Value token on its first colon. ok is false
// for plain labels and for tokens with an empty key.
func InterpretOverride(token string) (key, value string, ok bool) {
	token = strings.TrimPrefix(token, "@")
	k, v, found := strings.Cut(token, ":")
	if !found {
		return "", "", false
	}
	key = Normalize(strings.TrimSpace(k))
	if key == "" {
		return "", "", false
	}
	return key, Normalize(strings.TrimSpace(v)), true
}

// partitionTags splits tokens into plain labels and overrides.
func partitionTags(tokens []string) (labels []string, overrides map[string]string) {
	overrides = map[string]string{}
	for _, tok := range tokens {
		if !strings.Contains(tok, ":") {
			labels = append(labels, tok)
			continue
		}
		if key, value, ok := InterpretOverride(tok); ok {
			overrides[key] = value
		}
	}
	return labels, overrides
}

// tagName returns the text between the leading @ and the first colon.
func tagName(line string) string {
	name, _, _ := strings.Cut(strings.TrimPrefix(line, "@"), ":")
	return name
}
