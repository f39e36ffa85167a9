package notify

import (
	"regexp"
	"strings"

	"github.com/harborcrm/flowboard/internal/models"
)

var mentionPattern = regexp.MustCompile(`(^|\s)@([a-zA-Z0-9._-]{2,64})`)

// ExtractMentions resolves @tokens in a comment body against the project
// membership. Resolution is two-pass: exact handle match first, then
// prefix match against any candidate handle. Prefix matching is
// deliberately permissive so "@ali" reaches Alice; when several members
// share a prefix the first in membership order wins (callers pass members
// sorted by user id, so the winner is stable but otherwise arbitrary).
func ExtractMentions(body string, members []models.Member) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	type candidate struct {
		userID  string
		handles []string
	}
	exact := make(map[string]string)
	candidates := make([]candidate, 0, len(members))
	for _, m := range members {
		handles := handlesFor(m)
		for _, h := range handles {
			if _, taken := exact[h]; !taken {
				exact[h] = m.UserID
			}
		}
		candidates = append(candidates, candidate{userID: m.UserID, handles: handles})
	}

	seen := make(map[string]bool)
	var out []string
	for _, match := range matches {
		token := strings.ToLower(match[2])

		userID, ok := exact[token]
		if !ok {
		scan:
			for _, c := range candidates {
				for _, h := range c.handles {
					if strings.HasPrefix(h, token) {
						userID, ok = c.userID, true
						break scan
					}
				}
			}
		}
		if ok && !seen[userID] {
			seen[userID] = true
			out = append(out, userID)
		}
	}
	return out
}

// handlesFor generates the candidate handles for a member: the email
// local-part, the full email, each fragment of the display name, and the
// full lowercased name.
func handlesFor(m models.Member) []string {
	var handles []string
	add := func(h string) {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			handles = append(handles, h)
		}
	}

	if m.Email != "" {
		if at := strings.Index(m.Email, "@"); at > 0 {
			add(m.Email[:at])
		}
		add(m.Email)
	}
	if m.DisplayName != "" {
		for _, frag := range strings.FieldsFunc(m.DisplayName, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '.' || r == '_' || r == '-'
		}) {
			add(frag)
		}
		add(m.DisplayName)
	}
	return handles
}
