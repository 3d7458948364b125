package domain

import "time"

// EventKind identifies what happened on GitHub.
type EventKind string

const (
	KindPullRequestOpened    EventKind = "pull_request_opened"
	KindReviewRequested      EventKind = "review_requested"
	KindReviewRequestRemoved EventKind = "review_request_removed"
	KindPullRequestEdited    EventKind = "pull_request_edited"
	KindReviewSubmitted      EventKind = "review_submitted"
	KindCommitsPushed        EventKind = "commits_pushed"
	KindTagCreated           EventKind = "tag_created"
	KindTagDeleted           EventKind = "tag_deleted"
	KindRepositoryChanged    EventKind = "repository_changed"
)

// ChangeEvent is the request-scoped view of one inbound webhook delivery.
// Only the fields relevant to Kind are populated.
type ChangeEvent struct {
	Kind EventKind

	// Pull request fields.
	Title         string
	Body          string
	Branch        string
	URL           string
	Reviewers     []GitHubUser
	ChangedFields []string
	ReviewState   string

	// Push fields.
	Commits []Commit

	// Tag and repository fields.
	Version          string
	RepositoryAction string

	Repository Repository
	Actor      GitHubUser
	OccurredAt time.Time
}

// GitHubUser is whatever GitHub told us about a person. Webhooks are
// inconsistent about which of these are filled in.
type GitHubUser struct {
	Email string
	Login string
	Name  string
}

// IsZero reports whether nothing is known about the user.
func (u GitHubUser) IsZero() bool {
	return u.Email == "" && u.Login == "" && u.Name == ""
}

type Commit struct {
	ID      string
	Message string
	URL     string
	Author  GitHubUser
}

type Repository struct {
	Name        string
	Description string
	HTMLURL     string
}
