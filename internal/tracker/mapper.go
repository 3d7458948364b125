// Package tracker maps GitHub change events onto tracking-backend mutations:
// code review status and replies on tickets, revisions for pushed commits,
// releases for tags and components for repositories.
package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
)

// Backend is the tracking backend API. FindOne returns an error matching
// domain.ErrNotFound when no record matches.
type Backend interface {
	Create(ctx context.Context, entityType string, fields domain.Fields) (domain.Entity, error)
	Update(ctx context.Context, entityType string, id int, fields domain.Fields) (domain.Entity, error)
	FindOne(ctx context.Context, entityType string, query domain.Query) (domain.Entity, error)
}

// ProfileSource completes a GitHub user with details the webhook left out.
type ProfileSource interface {
	Complete(ctx context.Context, user domain.GitHubUser) (domain.GitHubUser, error)
}

type Settings struct {
	// Project every revision and release is filed under.
	Project domain.EntityRef
	// ComponentEntityType is the custom entity used for components.
	ComponentEntityType string
	// BareBranchRepos get sg_branch set to the branch alone instead of repo/branch.
	BareBranchRepos []string
}

type Mapper struct {
	backend  Backend
	profiles ProfileSource
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewMapper creates a Mapper. profiles may be nil.
func NewMapper(backend Backend, profiles ProfileSource, settings Settings, logger *zap.Logger) *Mapper {
	return &Mapper{
		backend:  backend,
		profiles: profiles,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle issues the mutations for one event. Missing tickets, components
// and releases are logged and skipped; the returned error is only set when
// the backend itself failed.
func (m *Mapper) Handle(ctx context.Context, event domain.ChangeEvent) error {
	logger := m.logger.With(zap.String("kind", string(event.Kind)))

	switch event.Kind {
	case domain.KindPullRequestOpened, domain.KindReviewRequested:
		ticketID, ok := m.pullRequestTicket(event, logger)
		if !ok {
			return nil
		}
		author := m.ResolveUser(ctx, event.Actor)
		for _, reviewer := range event.Reviewers {
			err := m.AssignCodeReview(ctx, ticketID, m.ResolveUser(ctx, reviewer), reviewer, event.Title, event.Body, event.URL, author)
			if err != nil {
				return err
			}
		}
		return nil

	case domain.KindReviewRequestRemoved:
		ticketID, ok := m.pullRequestTicket(event, logger)
		if !ok {
			return nil
		}
		return m.UnassignCodeReview(ctx, ticketID)

	case domain.KindPullRequestEdited:
		ticketID, ok := m.pullRequestTicket(event, logger)
		if !ok {
			return nil
		}
		return m.NotifyPullRequestUpdated(ctx, ticketID, event.URL, event.ChangedFields, event.Title, event.Body, m.ResolveUser(ctx, event.Actor))

	case domain.KindReviewSubmitted:
		ticketID, ok := m.pullRequestTicket(event, logger)
		if !ok {
			return nil
		}
		return m.SubmitCodeReview(ctx, ticketID, m.ResolveUser(ctx, event.Actor), event.ReviewState, event.Body, event.URL)

	case domain.KindCommitsPushed:
		for _, commit := range event.Commits {
			if err := m.CreateRevision(ctx, event.Repository.Name, event.Branch, commit); err != nil {
				return err
			}
		}
		return nil

	case domain.KindTagCreated:
		releaseDate := event.OccurredAt
		if releaseDate.IsZero() {
			releaseDate = m.now()
		}
		return m.CreateRelease(ctx, event.Repository, event.Version, event.Actor, releaseDate)

	case domain.KindTagDeleted:
		return m.MarkReleaseDeleted(ctx, event.Repository.Name, event.Version)

	case domain.KindRepositoryChanged:
		status, ok := domain.ComponentStatuses[event.RepositoryAction]
		if !ok {
			logger.Debug("ignoring repository action", zap.String("action", event.RepositoryAction))
			return nil
		}
		if event.RepositoryAction == "created" {
			return m.CreateComponent(ctx, event.Repository.Name, event.Repository.Description, status)
		}
		return m.UpdateComponentStatus(ctx, event.Repository.Name, status)

	default:
		return fmt.Errorf("unsupported event kind %q", event.Kind)
	}
}

// skipMissing turns a not-found error into a logged skip.
func (m *Mapper) skipMissing(err error, msg string, fields ...zap.Field) error {
	if domain.IsNotFound(err) {
		m.logger.Info(msg, append(fields, zap.Error(err))...)
		return nil
	}
	return err
}
