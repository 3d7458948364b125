package tracker

import (
	"context"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
)

// userLookup is one way of finding a HumanUser from a GitHub identity.
type userLookup struct {
	field string
	value func(domain.GitHubUser) string
}

var userLookups = []userLookup{
	{field: "email", value: func(u domain.GitHubUser) string { return u.Email }},
	{field: "sg_github_email", value: func(u domain.GitHubUser) string { return u.Email }},
	{field: "sg_github_login", value: func(u domain.GitHubUser) string { return u.Login }},
	{field: "name", value: func(u domain.GitHubUser) string { return u.Name }},
}

// ResolveUser finds the HumanUser for a GitHub user by email, then login,
// then display name. It returns nil when nobody matches or a lookup fails,
// in which case writes fall back to the script user.
func (m *Mapper) ResolveUser(ctx context.Context, user domain.GitHubUser) *domain.EntityRef {
	if user.IsZero() {
		return nil
	}

	if m.profiles != nil {
		completed, err := m.profiles.Complete(ctx, user)
		if err != nil {
			m.logger.Warn("github profile lookup failed", zap.String("login", user.Login), zap.Error(err))
		} else {
			user = completed
		}
	}

	for _, lookup := range userLookups {
		value := lookup.value(user)
		if value == "" {
			continue
		}

		found, err := m.backend.FindOne(ctx, domain.EntityHumanUser, domain.Query{
			Filters: []domain.Filter{domain.Is(lookup.field, value)},
			Fields:  []string{"name"},
		})
		if err != nil {
			if !domain.IsNotFound(err) {
				m.logger.Warn("user lookup failed",
					zap.String("field", lookup.field),
					zap.String("value", value),
					zap.Error(err),
				)
			}
			continue
		}

		ref := found.Ref()
		return &ref
	}

	m.logger.Debug("no tracker user for github user",
		zap.String("login", user.Login),
		zap.String("email", user.Email),
	)
	return nil
}

func userName(user *domain.EntityRef, fallback string) string {
	if user == nil || user.Name == "" {
		return fallback
	}
	return user.Name
}
