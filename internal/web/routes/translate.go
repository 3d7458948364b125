package routes

import (
	"strings"

	"github.com/google/go-github/v68/github"

	"tracker-hooks/internal/domain"
)

const branchRefPrefix = "refs/heads/"

// toChangeEvent converts a parsed webhook payload into a ChangeEvent. It
// returns false for events and actions that do not touch the tracker.
func toChangeEvent(payload any) (domain.ChangeEvent, bool) {
	switch e := payload.(type) {
	case *github.PullRequestEvent:
		return fromPullRequest(e)
	case *github.PullRequestReviewEvent:
		return fromPullRequestReview(e)
	case *github.PushEvent:
		return fromPush(e)
	case *github.CreateEvent:
		if e.GetRefType() != "tag" {
			return domain.ChangeEvent{}, false
		}
		return domain.ChangeEvent{
			Kind:       domain.KindTagCreated,
			Version:    e.GetRef(),
			Repository: fromRepository(e.GetRepo()),
			Actor:      fromUser(e.GetSender()),
		}, true
	case *github.DeleteEvent:
		if e.GetRefType() != "tag" {
			return domain.ChangeEvent{}, false
		}
		return domain.ChangeEvent{
			Kind:       domain.KindTagDeleted,
			Version:    e.GetRef(),
			Repository: fromRepository(e.GetRepo()),
			Actor:      fromUser(e.GetSender()),
		}, true
	case *github.RepositoryEvent:
		if _, ok := domain.ComponentStatuses[e.GetAction()]; !ok {
			return domain.ChangeEvent{}, false
		}
		return domain.ChangeEvent{
			Kind:             domain.KindRepositoryChanged,
			RepositoryAction: e.GetAction(),
			Repository:       fromRepository(e.GetRepo()),
			Actor:            fromUser(e.GetSender()),
		}, true
	default:
		return domain.ChangeEvent{}, false
	}
}

func fromPullRequest(e *github.PullRequestEvent) (domain.ChangeEvent, bool) {
	pr := e.GetPullRequest()
	event := domain.ChangeEvent{
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		Branch:     pr.GetHead().GetRef(),
		URL:        pr.GetHTMLURL(),
		Repository: fromRepository(e.GetRepo()),
		Actor:      fromUser(e.GetSender()),
	}

	switch e.GetAction() {
	case "opened":
		event.Kind = domain.KindPullRequestOpened
		for _, reviewer := range pr.RequestedReviewers {
			event.Reviewers = append(event.Reviewers, fromUser(reviewer))
		}
	case "review_requested":
		event.Kind = domain.KindReviewRequested
		// Team review requests carry no reviewer.
		if reviewer := e.GetRequestedReviewer(); reviewer != nil {
			event.Reviewers = []domain.GitHubUser{fromUser(reviewer)}
		}
	case "review_request_removed":
		event.Kind = domain.KindReviewRequestRemoved
		if reviewer := e.GetRequestedReviewer(); reviewer != nil {
			event.Reviewers = []domain.GitHubUser{fromUser(reviewer)}
		}
	case "edited":
		event.Kind = domain.KindPullRequestEdited
		changes := e.GetChanges()
		if changes.GetTitle() != nil {
			event.ChangedFields = append(event.ChangedFields, "title")
		}
		if changes.GetBody() != nil {
			event.ChangedFields = append(event.ChangedFields, "body")
		}
		if changes.GetBase() != nil {
			event.ChangedFields = append(event.ChangedFields, "base")
		}
	default:
		return domain.ChangeEvent{}, false
	}
	return event, true
}

func fromPullRequestReview(e *github.PullRequestReviewEvent) (domain.ChangeEvent, bool) {
	if e.GetAction() != "submitted" {
		return domain.ChangeEvent{}, false
	}

	pr := e.GetPullRequest()
	review := e.GetReview()

	reviewer := review.GetUser()
	if reviewer == nil {
		reviewer = e.GetSender()
	}

	return domain.ChangeEvent{
		Kind:        domain.KindReviewSubmitted,
		Title:       pr.GetTitle(),
		Body:        review.GetBody(),
		Branch:      pr.GetHead().GetRef(),
		URL:         review.GetHTMLURL(),
		ReviewState: review.GetState(),
		Repository:  fromRepository(e.GetRepo()),
		Actor:       fromUser(reviewer),
		OccurredAt:  review.GetSubmittedAt().Time,
	}, true
}

// fromPush only covers branch pushes. Tags are handled by create and delete
// events, and branch deletions carry no commits.
func fromPush(e *github.PushEvent) (domain.ChangeEvent, bool) {
	if e.GetDeleted() || !strings.HasPrefix(e.GetRef(), branchRefPrefix) {
		return domain.ChangeEvent{}, false
	}

	event := domain.ChangeEvent{
		Kind:   domain.KindCommitsPushed,
		Branch: strings.TrimPrefix(e.GetRef(), branchRefPrefix),
		Repository: domain.Repository{
			Name:        e.GetRepo().GetName(),
			Description: e.GetRepo().GetDescription(),
			HTMLURL:     e.GetRepo().GetHTMLURL(),
		},
		Actor: fromUser(e.GetSender()),
	}
	for _, commit := range e.GetCommits() {
		author := commit.GetAuthor()
		event.Commits = append(event.Commits, domain.Commit{
			ID:      commit.GetID(),
			Message: commit.GetMessage(),
			URL:     commit.GetURL(),
			Author: domain.GitHubUser{
				Email: author.GetEmail(),
				Login: author.GetLogin(),
				Name:  author.GetName(),
			},
		})
	}
	if len(event.Commits) == 0 {
		return domain.ChangeEvent{}, false
	}
	return event, true
}

func fromRepository(repo *github.Repository) domain.Repository {
	return domain.Repository{
		Name:        repo.GetName(),
		Description: repo.GetDescription(),
		HTMLURL:     repo.GetHTMLURL(),
	}
}

func fromUser(user *github.User) domain.GitHubUser {
	return domain.GitHubUser{
		Email: user.GetEmail(),
		Login: user.GetLogin(),
		Name:  user.GetName(),
	}
}
