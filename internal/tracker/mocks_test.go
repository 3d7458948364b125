package tracker

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"tracker-hooks/internal/domain"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Create(ctx context.Context, entityType string, fields domain.Fields) (domain.Entity, error) {
	args := m.Called(ctx, entityType, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Entity), args.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, entityType string, id int, fields domain.Fields) (domain.Entity, error) {
	args := m.Called(ctx, entityType, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Entity), args.Error(1)
}

func (m *MockBackend) FindOne(ctx context.Context, entityType string, query domain.Query) (domain.Entity, error) {
	args := m.Called(ctx, entityType, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Entity), args.Error(1)
}

type MockProfileSource struct {
	mock.Mock
}

func (m *MockProfileSource) Complete(ctx context.Context, user domain.GitHubUser) (domain.GitHubUser, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.GitHubUser), args.Error(1)
}

// filterOn matches a query whose first filter is field == value.
func filterOn(field string, value any) any {
	return mock.MatchedBy(func(q domain.Query) bool {
		return len(q.Filters) > 0 && q.Filters[0].Field == field && q.Filters[0].Value == value
	})
}

// replyContaining matches a Reply payload on ticketID whose text contains s.
func replyContaining(ticketID int, s string) any {
	return mock.MatchedBy(func(f domain.Fields) bool {
		content, _ := f["content"].(string)
		return f["entity"] == domain.EntityRef{Type: domain.EntityTicket, ID: ticketID} && strings.Contains(content, s)
	})
}
