// Package githubapi fills in the parts of a GitHub user that webhook
// payloads leave out.
package githubapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/gregjones/httpcache"
	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
)

type ProfileClient struct {
	client *github.Client
	logger *zap.Logger
}

// NewProfileClient creates a client for the public GitHub API, or for a
// GitHub Enterprise server when apiURL is set. Responses are cached in
// memory so repeated lookups of the same login are answered with
// conditional requests.
func NewProfileClient(token, apiURL string, logger *zap.Logger) (*ProfileClient, error) {
	client := github.NewClient(httpcache.NewMemoryCacheTransport().Client())
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("github api url: %w", err)
		}
	}

	return &ProfileClient{client: client, logger: logger}, nil
}

// Complete returns user with its empty email and name taken from the
// user's public GitHub profile. Users without a login are returned as is.
func (p *ProfileClient) Complete(ctx context.Context, user domain.GitHubUser) (domain.GitHubUser, error) {
	if user.Login == "" || (user.Email != "" && user.Name != "") {
		return user, nil
	}

	profile, _, err := p.client.Users.Get(ctx, user.Login)
	if err != nil {
		return user, fmt.Errorf("get github user %s: %w", user.Login, err)
	}

	if user.Email == "" {
		user.Email = strings.TrimSpace(profile.GetEmail())
	}
	if user.Name == "" {
		user.Name = strings.TrimSpace(profile.GetName())
	}

	p.logger.Debug("completed github profile",
		zap.String("login", user.Login),
		zap.Bool("has_email", user.Email != ""),
	)
	return user, nil
}
