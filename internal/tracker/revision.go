package tracker

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
	"tracker-hooks/internal/ticket"
)

// CreateRevision records a pushed commit. When the commit message does not
// reference a ticket but the branch name does, the message is prefixed with
// "for #<id>: " so the backend links the revision to that ticket.
func (m *Mapper) CreateRevision(ctx context.Context, repo, branch string, commit domain.Commit) error {
	sgBranch := repo + "/" + branch
	if slices.Contains(m.settings.BareBranchRepos, repo) {
		sgBranch = branch
	}

	message := revisionMessage(commit.Message, branch)

	component, err := m.FindComponent(ctx, repo)
	if err != nil {
		return err
	}

	fields := domain.Fields{
		"project":      m.settings.Project,
		"code":         commit.ID,
		"description":  message,
		"attachment":   domain.URLField{URL: commit.URL, Name: "Github"},
		"sg_branch":    sgBranch,
		"sg_component": linkValue(component),
	}
	if user := m.ResolveUser(ctx, commit.Author); user != nil {
		fields["created_by"] = *user
	}

	m.logger.Info("creating revision", zap.String("code", commit.ID), zap.String("branch", sgBranch))
	revision, err := m.backend.Create(ctx, domain.EntityRevision, fields)
	if err != nil {
		return fmt.Errorf("revision %s: %w", commit.ID, err)
	}
	m.logger.Info("created revision", zap.Int("id", revision.ID()), zap.String("code", commit.ID))
	return nil
}

func revisionMessage(message, branch string) string {
	if _, ok := ticket.ParseReference(message); ok {
		return message
	}
	if id, ok := ticket.ParseReference(branch); ok {
		return fmt.Sprintf("for #%d: %s", id, message)
	}
	return message
}
