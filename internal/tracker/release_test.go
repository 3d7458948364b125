package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracker-hooks/internal/domain"
)

var appComponent = domain.Entity{"type": componentType, "id": 3, "code": "app"}

func TestMapper_TagCreated(t *testing.T) {
	componentRef := domain.EntityRef{Type: componentType, ID: 3, Name: "app"}
	repo := domain.Repository{Name: "app", HTMLURL: "https://github.com/acme/app"}

	t.Run("compares with latest release", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, componentType, filterOn("code", "app")).Return(appComponent, nil)
		backend.On("FindOne", mock.Anything, domain.EntityRelease, filterOn("sg_component", componentRef)).
			Return(domain.Entity{"type": domain.EntityRelease, "id": 40, "code": "v1.1.0"}, nil).Once()
		backend.On("FindOne", mock.Anything, domain.EntityHumanUser, filterOn("sg_github_login", "alice")).Return(alice, nil)
		backend.On("Create", mock.Anything, domain.EntityRelease, domain.Fields{
			"project":         project,
			"sg_component":    componentRef,
			"code":            "v1.2.0",
			"sg_release_date": "2026-10-01",
			"sg_release_url":  domain.URLField{URL: "https://github.com/acme/app/compare/v1.1.0...v1.2.0", Name: "Compare in Github"},
			"created_by":      aliceRef,
		}).Return(domain.Entity{"type": domain.EntityRelease, "id": 41}, nil).Once()

		err := newTestMapper(backend).Handle(context.Background(), domain.ChangeEvent{
			Kind:       domain.KindTagCreated,
			Version:    "v1.2.0",
			Repository: repo,
			Actor:      domain.GitHubUser{Login: "alice"},
			OccurredAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		backend.AssertExpectations(t)
	})

	t.Run("first release links to the tag", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, componentType, filterOn("code", "app")).Return(appComponent, nil)
		backend.On("FindOne", mock.Anything, domain.EntityRelease, mock.Anything).Return(nil, domain.ErrNotFound).Once()
		backend.On("Create", mock.Anything, domain.EntityRelease, mock.MatchedBy(func(f domain.Fields) bool {
			return f["sg_release_url"] == domain.URLField{URL: "https://github.com/acme/app/releases/tag/v0.1.0", Name: "Compare in Github"} &&
				f["sg_release_date"] == "2026-10-18"
		})).Return(domain.Entity{"type": domain.EntityRelease, "id": 1}, nil).Once()

		err := newTestMapper(backend).Handle(context.Background(), domain.ChangeEvent{
			Kind:       domain.KindTagCreated,
			Version:    "v0.1.0",
			Repository: repo,
		})

		require.NoError(t, err)
		backend.AssertExpectations(t)
	})

	t.Run("without component links to the tag", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, componentType, filterOn("code", "app")).Return(nil, domain.ErrNotFound)
		backend.On("Create", mock.Anything, domain.EntityRelease, mock.MatchedBy(func(f domain.Fields) bool {
			return f["sg_component"] == nil &&
				f["sg_release_url"] == domain.URLField{URL: "https://github.com/acme/app/releases/tag/v0.2.0", Name: "Compare in Github"}
		})).Return(domain.Entity{"type": domain.EntityRelease, "id": 2}, nil).Once()

		err := newTestMapper(backend).Handle(context.Background(), domain.ChangeEvent{
			Kind:       domain.KindTagCreated,
			Version:    "v0.2.0",
			Repository: repo,
		})

		require.NoError(t, err)
		backend.AssertExpectations(t)
		backend.AssertNotCalled(t, "FindOne", mock.Anything, domain.EntityRelease, mock.Anything)
	})

	t.Run("component lookup failure", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, componentType, mock.Anything).
			Return(nil, &domain.BackendError{StatusCode: 502, Body: "bad gateway"})

		err := newTestMapper(backend).Handle(context.Background(), domain.ChangeEvent{
			Kind:       domain.KindTagCreated,
			Version:    "v0.1.0",
			Repository: repo,
		})

		require.ErrorIs(t, err, domain.ErrBackendUnavailable)
		backend.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReleaseURL(t *testing.T) {
	previous := domain.Entity{
		"code":           "v1.0.0",
		"sg_release_url": map[string]any{"url": "https://github.com/acme/app/compare/v0.9.0...v1.0.0", "name": "Compare in Github"},
	}

	tests := []struct {
		name     string
		repoURL  string
		previous domain.Entity
		expected string
	}{
		{"compare with previous", "https://github.com/acme/app/", previous, "https://github.com/acme/app/compare/v1.0.0...v1.1.0"},
		{"first release", "https://github.com/acme/app", nil, "https://github.com/acme/app/releases/tag/v1.1.0"},
		{"previous without code", "https://github.com/acme/app", domain.Entity{"id": 2}, "https://github.com/acme/app/releases/tag/v1.1.0"},
		{"base from previous link", "", previous, "https://github.com/acme/app/compare/v1.0.0...v1.1.0"},
		{"nothing to link", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, releaseURL(tt.repoURL, tt.previous, "v1.1.0"))
		})
	}
}

func TestMapper_TagDeleted(t *testing.T) {
	event := domain.ChangeEvent{
		Kind:       domain.KindTagDeleted,
		Version:    "v1.2.0",
		Repository: domain.Repository{Name: "app"},
	}

	t.Run("marks release deleted", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, domain.EntityRelease, mock.MatchedBy(func(q domain.Query) bool {
			return len(q.Filters) == 2 &&
				q.Filters[0] == domain.Is("code", "v1.2.0") &&
				q.Filters[1] == domain.Is("sg_component.CustomNonProjectEntity01.code", "app")
		})).Return(domain.Entity{"type": domain.EntityRelease, "id": 41}, nil).Once()
		backend.On("Update", mock.Anything, domain.EntityRelease, 41, domain.Fields{
			"sg_status_list": "omt",
			"sg_release_url": nil,
		}).Return(domain.Entity{"type": domain.EntityRelease, "id": 41}, nil).Once()

		require.NoError(t, newTestMapper(backend).Handle(context.Background(), event))
		backend.AssertExpectations(t)
	})

	t.Run("unknown release is skipped", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("FindOne", mock.Anything, domain.EntityRelease, mock.Anything).Return(nil, domain.ErrNotFound).Once()

		require.NoError(t, newTestMapper(backend).Handle(context.Background(), event))
		backend.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
