package domain

// TicketStatus is a Ticket sg_status_list code.
type TicketStatus string

const (
	TicketPendingCodeReview TicketStatus = "code"
)

// Known reports whether the backend has this ticket status.
func (s TicketStatus) Known() bool {
	switch s {
	case TicketPendingCodeReview:
		return true
	}
	return false
}

// ReleaseDeleted is the status of a release whose tag was removed.
const ReleaseDeleted = "omt"

// ComponentStatuses maps GitHub repository actions to component status codes.
var ComponentStatuses = map[string]string{
	"created":    "ip",
	"deleted":    "omt",
	"publicized": "public",
	"privatized": "priv",
}

// IgnoredReviewStates are review states that never reach the ticket.
// "commented" covers general thread comments and line comments.
var IgnoredReviewStates = []string{"commented"}
