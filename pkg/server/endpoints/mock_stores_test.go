package endpoints

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) FetchUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FetchUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersStore) UpdateUserRole(ctx context.Context, id string, r role.Role) error {
	args := m.Called(ctx, id, r)
	return args.Error(0)
}

// MockGridsStore implements store.GridsStore for testing using testify/mock
type MockGridsStore struct {
	mock.Mock
}

func (m *MockGridsStore) ListGrids(ctx context.Context, filter store.GridFilter) ([]model.Grid, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Grid), args.Error(1)
}

func (m *MockGridsStore) FetchGrid(ctx context.Context, id string) (*model.Grid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Grid), args.Error(1)
}

func (m *MockGridsStore) CreateGrid(ctx context.Context, grid *model.Grid) error {
	args := m.Called(ctx, grid)
	return args.Error(0)
}

// MockVolunteersStore implements store.VolunteersStore for testing using testify/mock
type MockVolunteersStore struct {
	mock.Mock
}

func (m *MockVolunteersStore) ListRegistrations(ctx context.Context, opts store.ListOptions) ([]model.VolunteerRegistration, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]model.VolunteerRegistration), args.Error(1)
}

func (m *MockVolunteersStore) CreateRegistration(ctx context.Context, reg *model.VolunteerRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

// MockDonationsStore implements store.DonationsStore for testing using testify/mock
type MockDonationsStore struct {
	mock.Mock
}

func (m *MockDonationsStore) ListDonations(ctx context.Context, opts store.ListOptions) ([]model.SupplyDonation, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]model.SupplyDonation), args.Error(1)
}

func (m *MockDonationsStore) CreateDonation(ctx context.Context, donation *model.SupplyDonation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

// MockAnnouncementsStore implements store.AnnouncementsStore for testing using testify/mock
type MockAnnouncementsStore struct {
	mock.Mock
}

func (m *MockAnnouncementsStore) ListAnnouncements(ctx context.Context, limit, offset int) ([]model.Announcement, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Announcement), args.Error(1)
}

func (m *MockAnnouncementsStore) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuditLogsStore implements store.AuditLogsStore for testing using testify/mock
type MockAuditLogsStore struct {
	mock.Mock
}

func (m *MockAuditLogsStore) List(ctx context.Context, opts audit.ListOptions) ([]audit.Message, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]audit.Message), args.Error(1)
}

// memoryPermissions is an in-memory store.PermissionsStore.
type memoryPermissions struct {
	mu      sync.Mutex
	rules   map[string]permission.Rule
	loads   int
	saveErr error
}

func newMemoryPermissions(rules []permission.Rule) *memoryPermissions {
	m := &memoryPermissions{rules: make(map[string]permission.Rule)}
	for _, r := range rules {
		m.rules[r.Role.String()+"/"+r.ResourceKey] = r
	}
	return m
}

func (m *memoryPermissions) LoadRules(ctx context.Context) ([]permission.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	rules := make([]permission.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		rules = append(rules, r)
	}
	return rules, nil
}

func (m *memoryPermissions) SaveRules(ctx context.Context, rules []permission.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, r := range rules {
		m.rules[r.Role.String()+"/"+r.ResourceKey] = r
	}
	return nil
}

// recordingAuditor keeps every event it is given.
type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Log(ctx context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAuditor) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}
