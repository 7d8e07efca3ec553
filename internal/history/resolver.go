package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diogo/pulsechat/internal/models"
)

// Resolve converts a user-friendly reference to a conversation ID.
//
// Supported references:
//   - exact conversation id ("sarah-chen")
//   - "1", "2", "3" - by list position (1-based)
//   - "substring" - case-insensitive match on the display name (error if ambiguous)
func Resolve(convs []*models.Conversation, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	for _, c := range convs {
		if c.ID == ref {
			return c.ID, nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(convs) {
			return "", fmt.Errorf("index %d out of range (1-%d)", n, len(convs))
		}
		return convs[n-1].ID, nil
	}

	needle := strings.ToLower(ref)
	var matches []*models.Conversation
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matches %q", ref)
	case 1:
		return matches[0].ID, nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return "", fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(names, ", "))
	}
}
