package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
	"tracker-hooks/internal/ticket"
)

const (
	unknownUser      = "Unknown"
	unassignedReview = "Unassigned"
)

// pullRequestTicket finds the ticket a pull request is for, from its title
// or else its head branch.
func (m *Mapper) pullRequestTicket(event domain.ChangeEvent, logger *zap.Logger) (int, bool) {
	if id, ok := ticket.ParseReference(event.Title); ok {
		return id, true
	}
	if id, ok := ticket.ParseReference(event.Branch); ok {
		return id, true
	}
	logger.Debug("no ticket referenced", zap.String("title", event.Title), zap.String("branch", event.Branch))
	return 0, false
}

// AssignCodeReview sets the ticket to pending code review with reviewer as
// the assignee, then replies with the pull request details as by.
func (m *Mapper) AssignCodeReview(
	ctx context.Context,
	ticketID int,
	reviewer *domain.EntityRef,
	reviewerOnGitHub domain.GitHubUser,
	title string,
	body string,
	url string,
	by *domain.EntityRef,
) error {
	assigneeName := userName(reviewer, reviewerOnGitHub.Login)
	if assigneeName == "" {
		assigneeName = unknownUser
	}

	reply, err := domain.RenderReply(domain.ReplyAssigned, domain.ReplyFields{
		Title:    title,
		Assignee: assigneeName,
		URL:      url,
		Body:     body,
	})
	if err != nil {
		return err
	}

	assignment := domain.ReviewAssignment{
		TicketID: ticketID,
		Reviewer: reviewer,
		Status:   domain.TicketPendingCodeReview,
		URL:      url,
		Reply:    reply,
	}
	if err := assignment.Validate(); err != nil {
		return err
	}

	result, err := m.backend.Update(ctx, domain.EntityTicket, ticketID, assignment.Fields())
	if err != nil {
		return m.skipMissing(err, "ticket not found, not assigning code review", zap.Int("ticket", ticketID))
	}
	m.logger.Debug("assigned code review", zap.Int("ticket", result.ID()), zap.String("assignee", assigneeName))

	return m.AddTicketReply(ctx, ticketID, assignment.Reply, by)
}

// UnassignCodeReview clears the code reviewer of a ticket.
func (m *Mapper) UnassignCodeReview(ctx context.Context, ticketID int) error {
	_, err := m.backend.Update(ctx, domain.EntityTicket, ticketID, domain.Fields{"sg_code_review": nil})
	if err != nil {
		return m.skipMissing(err, "ticket not found, not removing code review", zap.Int("ticket", ticketID))
	}
	m.logger.Debug("removed code review assignment", zap.Int("ticket", ticketID))
	return nil
}

// NotifyPullRequestUpdated replies with the new title and body of a pull
// request. The webhook does not say who reviews the pull request, so the
// ticket is queried for it; a ticket without a reviewer still gets the reply.
func (m *Mapper) NotifyPullRequestUpdated(
	ctx context.Context,
	ticketID int,
	url string,
	changed []string,
	title string,
	body string,
	by *domain.EntityRef,
) error {
	found, err := m.backend.FindOne(ctx, domain.EntityTicket, domain.Query{
		Filters: []domain.Filter{domain.Is("id", ticketID)},
		Fields:  []string{"sg_code_review"},
	})
	if err != nil {
		return m.skipMissing(err, "ticket not found, not posting edited pull request", zap.Int("ticket", ticketID))
	}

	assignee := unassignedReview
	if reviewer, ok := found.Link("sg_code_review"); ok && reviewer.Name != "" {
		assignee = reviewer.Name
	}

	field := strings.Join(changed, " and ")
	if field == "" {
		field = "pull request"
	}

	reply, err := domain.RenderReply(domain.ReplyEdited, domain.ReplyFields{
		Title:    title,
		Assignee: assignee,
		URL:      url,
		Field:    field,
		Body:     body,
	})
	if err != nil {
		return err
	}
	return m.AddTicketReply(ctx, ticketID, reply, by)
}

// SubmitCodeReview replies with the outcome of a review. Ignored states
// such as "commented" produce no reply.
func (m *Mapper) SubmitCodeReview(
	ctx context.Context,
	ticketID int,
	reviewer *domain.EntityRef,
	state string,
	reviewBody string,
	url string,
) error {
	if slices.Contains(domain.IgnoredReviewStates, strings.ToLower(state)) {
		m.logger.Debug("ignoring review state", zap.Int("ticket", ticketID), zap.String("state", state))
		return nil
	}

	status := strings.ToUpper(state)
	reply, err := domain.RenderReply(domain.ReplySubmitted, domain.ReplyFields{
		Status:   status,
		Reviewer: userName(reviewer, unknownUser),
		URL:      url,
		Body:     reviewBody,
	})
	if err != nil {
		return err
	}

	submission := domain.ReviewSubmission{
		TicketID: ticketID,
		Reviewer: reviewer,
		State:    status,
		Reply:    reply,
	}
	if err := submission.Validate(); err != nil {
		return err
	}
	return m.AddTicketReply(ctx, submission.TicketID, submission.Reply, submission.Reviewer)
}

// AddTicketReply posts content on a ticket as user, or as the script user
// when user is nil.
func (m *Mapper) AddTicketReply(ctx context.Context, ticketID int, content string, user *domain.EntityRef) error {
	if content == "" {
		return fmt.Errorf("reply to ticket #%d: %w", ticketID, domain.ErrEmptyReply)
	}

	fields := domain.Fields{
		"entity":  domain.EntityRef{Type: domain.EntityTicket, ID: ticketID},
		"content": content,
	}
	if user != nil {
		fields["user"] = *user
	}

	result, err := m.backend.Create(ctx, domain.EntityReply, fields)
	if err != nil {
		return m.skipMissing(err, "ticket not found, reply not posted", zap.Int("ticket", ticketID))
	}
	m.logger.Debug("added reply", zap.Int("ticket", ticketID), zap.Int("reply", result.ID()))
	return nil
}
