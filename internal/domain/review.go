package domain

import "fmt"

// ReviewAssignment is the ticket update made when a reviewer is requested.
type ReviewAssignment struct {
	TicketID int
	Reviewer *EntityRef
	Status   TicketStatus
	URL      string
	Reply    string
}

func (a ReviewAssignment) Validate() error {
	if !a.Status.Known() {
		return fmt.Errorf("ticket #%d status %q: %w", a.TicketID, a.Status, ErrUnknownStatus)
	}
	if a.Reply == "" {
		return fmt.Errorf("ticket #%d: %w", a.TicketID, ErrEmptyReply)
	}
	return nil
}

// Fields returns the Ticket update payload.
func (a ReviewAssignment) Fields() Fields {
	fields := Fields{
		"sg_status_list":     string(a.Status),
		"sg_code_review_url": URLField{URL: a.URL, Name: "Github Pull Request"},
	}
	// An unresolved reviewer leaves the current assignment in place.
	if a.Reviewer != nil {
		fields["sg_code_review"] = *a.Reviewer
	}
	return fields
}

// ReviewSubmission is the reply made when a reviewer submits a review.
type ReviewSubmission struct {
	TicketID int
	Reviewer *EntityRef
	State    string
	Reply    string
}

func (s ReviewSubmission) Validate() error {
	if s.Reply == "" {
		return fmt.Errorf("ticket #%d: %w", s.TicketID, ErrEmptyReply)
	}
	return nil
}
