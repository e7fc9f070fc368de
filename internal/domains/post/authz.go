package post

import (
	"blog-backend/internal/shared"
)

// Action is the closed set of operations the guard knows about.
type Action string

const (
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionPublish       Action = "publish"
	ActionArchive       Action = "archive"
	ActionLike          Action = "like"
	ActionComment       Action = "comment"
	ActionDeleteComment Action = "delete_comment"
	ActionListOwn       Action = "list_own"
	ActionListPending   Action = "list_pending"
	ActionListAll       Action = "list_all"
	ActionListPublished Action = "list_published"
	ActionReadPublic    Action = "read_public"
	ActionStats         Action = "stats"
)

// publicActions need no principal at all.
var publicActions = map[Action]struct{}{
	ActionReadPublic:    {},
	ActionListPublished: {},
}

// roleCapabilities maps each role to the actions it may attempt. Ownership
// and status constraints on resource-scoped actions are applied on top by
// CanPerform.
var roleCapabilities = map[shared.Role]map[Action]struct{}{
	shared.RoleAuthor: {
		ActionCreate:  {},
		ActionListOwn: {},
		ActionRead:    {},
		ActionUpdate:  {},
		ActionDelete:  {},
		ActionLike:    {},
		ActionComment: {},
	},
	shared.RoleReviewer: {
		ActionCreate:        {},
		ActionListOwn:       {},
		ActionRead:          {},
		ActionUpdate:        {},
		ActionDelete:        {},
		ActionLike:          {},
		ActionComment:       {},
		ActionApprove:       {},
		ActionReject:        {},
		ActionPublish:       {},
		ActionArchive:       {},
		ActionListPending:   {},
		ActionDeleteComment: {},
	},
	shared.RoleAdmin: {
		ActionCreate:        {},
		ActionListOwn:       {},
		ActionRead:          {},
		ActionUpdate:        {},
		ActionDelete:        {},
		ActionLike:          {},
		ActionComment:       {},
		ActionApprove:       {},
		ActionReject:        {},
		ActionPublish:       {},
		ActionArchive:       {},
		ActionListPending:   {},
		ActionListAll:       {},
		ActionDeleteComment: {},
		ActionStats:         {},
	},
}

// CanPerform is the authorization guard: a pure predicate over the
// principal's role, the requested action and, for resource-scoped actions,
// the resource. It never mutates anything; denial is surfaced by the
// service as a forbidden error.
func CanPerform(principal shared.Principal, action Action, resource *Post) bool {
	if _, ok := publicActions[action]; ok {
		return true
	}

	if principal.IsZero() {
		return false
	}

	caps, ok := roleCapabilities[principal.Role]
	if !ok {
		return false
	}
	if _, ok := caps[action]; !ok {
		return false
	}

	switch action {
	case ActionRead:
		// Owners and moderators see the full entity regardless of status.
		return resource != nil &&
			(resource.AuthorID == principal.ID || principal.Role.CanModerate())

	case ActionUpdate:
		if resource == nil {
			return false
		}
		if principal.Role == shared.RoleAdmin {
			return true
		}
		// Non-admins may only edit their own drafts and rejected posts;
		// items under review or already published are locked.
		return resource.AuthorID == principal.ID &&
			(resource.Status == StatusDraft || resource.Status == StatusRejected)

	case ActionDelete:
		if resource == nil {
			return false
		}
		return resource.AuthorID == principal.ID || principal.Role == shared.RoleAdmin

	default:
		return true
	}
}
