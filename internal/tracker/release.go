package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
)

const releaseURLName = "Compare in Github"

// FindLatestRelease returns the newest live release of a component by
// release date, newest id first on ties. It returns nil when there is none
// or component is nil.
func (m *Mapper) FindLatestRelease(ctx context.Context, component *domain.EntityRef) (domain.Entity, error) {
	if component == nil {
		return nil, nil
	}

	release, err := m.backend.FindOne(ctx, domain.EntityRelease, domain.Query{
		Filters: []domain.Filter{
			domain.Is("sg_component", *component),
			domain.IsNot("sg_status_list", domain.ReleaseDeleted),
		},
		Fields: []string{"code", "sg_release_url"},
		Order: []domain.Order{
			{Field: "sg_release_date", Direction: domain.Descending},
			{Field: "id", Direction: domain.Descending},
		},
	})
	if domain.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest release: %w", err)
	}
	return release, nil
}

// CreateRelease records a new tag of a repository. The release links to a
// GitHub compare view against the previous release when there is one.
func (m *Mapper) CreateRelease(
	ctx context.Context,
	repo domain.Repository,
	version string,
	createdBy domain.GitHubUser,
	releaseDate time.Time,
) error {
	component, err := m.FindComponent(ctx, repo.Name)
	if err != nil {
		return err
	}

	latest, err := m.FindLatestRelease(ctx, component)
	if err != nil {
		return err
	}

	fields := domain.Fields{
		"project":         m.settings.Project,
		"sg_component":    linkValue(component),
		"code":            version,
		"sg_release_date": releaseDate.Format(time.DateOnly),
		"sg_release_url":  domain.URLField{URL: releaseURL(repo.HTMLURL, latest, version), Name: releaseURLName},
	}
	if user := m.ResolveUser(ctx, createdBy); user != nil {
		fields["created_by"] = *user
	}

	release, err := m.backend.Create(ctx, domain.EntityRelease, fields)
	if err != nil {
		return fmt.Errorf("create release %s %s: %w", repo.Name, version, err)
	}
	m.logger.Info("created release",
		zap.String("component", repo.Name),
		zap.String("version", version),
		zap.Int("id", release.ID()),
	)
	return nil
}

// releaseURL links to the compare view between the previous release and
// version, or to the tag itself for a first release. Without a repository
// URL the compare base is taken from the previous release's link.
func releaseURL(repoURL string, previous domain.Entity, version string) string {
	repoURL = strings.TrimRight(repoURL, "/")

	if previous != nil && previous.String("code") != "" {
		var base string
		if repoURL != "" {
			base = repoURL + "/compare"
		} else if prevURL := previous.URL("sg_release_url"); strings.Contains(prevURL, "/") {
			// https://github.com/acme/app/compare/v1.0.0...v1.1.0 -> https://github.com/acme/app/compare
			base = prevURL[:strings.LastIndex(prevURL, "/")]
		}
		if base != "" {
			return fmt.Sprintf("%s/%s...%s", base, previous.String("code"), version)
		}
	}

	if repoURL == "" {
		return ""
	}
	return repoURL + "/releases/tag/" + version
}

// MarkReleaseDeleted flags the release of a removed tag as deleted.
func (m *Mapper) MarkReleaseDeleted(ctx context.Context, componentName, version string) error {
	release, err := m.backend.FindOne(ctx, domain.EntityRelease, domain.Query{
		Filters: []domain.Filter{
			domain.Is("code", version),
			domain.Is(fmt.Sprintf("sg_component.%s.code", m.settings.ComponentEntityType), componentName),
		},
	})
	if domain.IsNotFound(err) {
		m.logger.Warn("release not found", zap.String("component", componentName), zap.String("version", version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find release %s %s: %w", componentName, version, err)
	}

	_, err = m.backend.Update(ctx, domain.EntityRelease, release.ID(), domain.Fields{
		"sg_status_list": domain.ReleaseDeleted,
		"sg_release_url": nil,
	})
	if err != nil {
		return m.skipMissing(err, "release disappeared before delete", zap.Int("release", release.ID()))
	}
	m.logger.Info("set release as deleted", zap.String("component", componentName), zap.String("version", version))
	return nil
}
