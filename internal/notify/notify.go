// Package notify dispatches invite messages. The engine only constructs the
// registration link and role label; delivery runs through external providers
// and a send failure is never fatal to the invite itself.
package notify

import (
	"context"
	"strings"

	"scotia-sense/internal/domain"
)

type InviteMessage struct {
	Email       string
	PhoneNumber string // empty when no SMS requested
	TeamName    string
	RoleLabel   string
	Link        string
}

type Notifier interface {
	SendInviteEmail(ctx context.Context, msg InviteMessage) error
	SendInviteSMS(ctx context.Context, msg InviteMessage) error
}

// RoleLabel renders the invited role for message copy. A nil role means the
// invitee will register as a team admin.
func RoleLabel(role *domain.Role) string {
	if role == nil {
		return "Team Admin"
	}
	s := string(*role)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Article picks "a" or "an" for the role label.
func Article(label string) string {
	if label == "" {
		return "a"
	}
	switch label[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}
