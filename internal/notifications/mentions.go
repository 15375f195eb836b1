package notifications

import "regexp"

var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_]{3,40})`)

// ExtractMentions returns the distinct usernames mentioned as @username in
// the given markdown content, in first-seen order.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		usernames = append(usernames, m[1])
	}
	return usernames
}
