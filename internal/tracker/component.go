package tracker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
)

// FindComponent returns the component named like a repository, or nil when
// there is none.
func (m *Mapper) FindComponent(ctx context.Context, name string) (*domain.EntityRef, error) {
	component, err := m.backend.FindOne(ctx, m.settings.ComponentEntityType, domain.Query{
		Filters: []domain.Filter{domain.Is("code", name)},
		Fields:  []string{"code"},
	})
	if domain.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}

	ref := component.Ref()
	return &ref, nil
}

// CreateComponent creates a component for a new repository.
func (m *Mapper) CreateComponent(ctx context.Context, name, description, status string) error {
	component, err := m.backend.Create(ctx, m.settings.ComponentEntityType, domain.Fields{
		"code":           name,
		"description":    description,
		"sg_status_list": status,
	})
	if err != nil {
		return fmt.Errorf("create component %s: %w", name, err)
	}
	m.logger.Info("created component", zap.String("name", name), zap.Int("id", component.ID()))
	return nil
}

// UpdateComponentStatus sets the status of an existing component.
func (m *Mapper) UpdateComponentStatus(ctx context.Context, name, status string) error {
	component, err := m.FindComponent(ctx, name)
	if err != nil {
		return err
	}
	if component == nil {
		m.logger.Info("no component found", zap.String("name", name))
		return nil
	}

	_, err = m.backend.Update(ctx, m.settings.ComponentEntityType, component.ID, domain.Fields{
		"sg_status_list": status,
	})
	if err != nil {
		return m.skipMissing(err, "component disappeared before status update", zap.String("name", name))
	}
	m.logger.Info("updated component status", zap.String("name", name), zap.String("status", status))
	return nil
}

// linkValue is the payload value for an optional link field.
func linkValue(ref *domain.EntityRef) any {
	if ref == nil {
		return nil
	}
	return *ref
}
