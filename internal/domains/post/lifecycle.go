package post

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lifecycle transitions. Guards are strict: an action on a post outside its
// expected source status fails with a TransitionError reporting the current
// status, never a silent success.
//
//	pending  --approve-->  approved
//	pending  --reject--->  rejected
//	approved --publish-->  published
//	published --archive->  archived   (terminal)
//	draft|rejected --author edit--> pending

// Approve moves a pending post into approved and records the reviewer.
func (p *Post) Approve(reviewerID uuid.UUID, now time.Time) error {
	if p.Status != StatusPending {
		return &TransitionError{Action: "approve", From: p.Status}
	}

	p.Status = StatusApproved
	p.ReviewerID = &reviewerID
	p.ReviewedAt = &now
	p.RejectionReason = nil
	p.UpdatedAt = now
	return nil
}

// Reject moves a pending post into rejected. The reason is mandatory and is
// surfaced to the author.
func (p *Post) Reject(reviewerID uuid.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyRejectionReason
	}
	if p.Status != StatusPending {
		return &TransitionError{Action: "reject", From: p.Status}
	}

	p.Status = StatusRejected
	p.ReviewerID = &reviewerID
	p.ReviewedAt = &now
	p.RejectionReason = &reason
	p.UpdatedAt = now
	return nil
}

// Publish makes an approved post publicly visible. PublishedAt is set
// exactly once, the first time the post enters published.
func (p *Post) Publish(now time.Time) error {
	if p.Status != StatusApproved {
		return &TransitionError{Action: "publish", From: p.Status}
	}

	p.Status = StatusPublished
	p.IsPublished = true
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.UpdatedAt = now
	return nil
}

// Archive retires a published post. PublishedAt is preserved: archival does
// not erase history. Archived is terminal.
func (p *Post) Archive(now time.Time) error {
	if p.Status != StatusPublished {
		return &TransitionError{Action: "archive", From: p.Status}
	}

	p.Status = StatusArchived
	p.IsPublished = false
	p.UpdatedAt = now
	return nil
}

// Resubmit re-enters the review queue after an author edit of a draft or
// rejected post. The moderation block is cleared entirely so a later
// re-rejection leaves no residue of the previous verdict.
func (p *Post) Resubmit(now time.Time) error {
	if p.Status != StatusDraft && p.Status != StatusRejected {
		return &TransitionError{Action: "resubmit", From: p.Status}
	}

	p.Status = StatusPending
	p.ReviewerID = nil
	p.ReviewedAt = nil
	p.RejectionReason = nil
	p.UpdatedAt = now
	return nil
}
