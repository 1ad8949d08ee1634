package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/dedup"
	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/geo"
)

// MockProjectRepository is a mock implementation of repository.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByUserAndName(ctx context.Context, userID, name string) (*domain.Project, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjectCache is a mock implementation of cache.ProjectCache
type MockProjectCache struct {
	mock.Mock
}

func (m *MockProjectCache) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectCache) Set(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectCache) Invalidate(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// MockDeduper is a mock implementation of Deduper
type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Decide(ctx context.Context, b dedup.Beacon) (*dedup.Outcome, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dedup.Outcome), args.Error(1)
}

// MockResolver is a mock implementation of geo.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, ip string) (geo.Location, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(geo.Location), args.Error(1)
}

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, projectID string) {
	m.Called(ctx, projectID)
}

func newTrackService(repo *MockProjectRepository, projectCache *MockProjectCache, deduper *MockDeduper, resolver *MockResolver, pusher *MockPusher) *TrackService {
	return NewTrackService(repo, projectCache, deduper, resolver, pusher, zap.NewNop())
}

func TestTrackService_Track_Success(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(nil, nil)
	repo.On("FindByID", mock.Anything, "proj-1").Return(project, nil)
	projectCache.On("Set", mock.Anything, project).Return(nil)
	deduper.On("Decide", mock.Anything, mock.Anything).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	outcome, err := svc.Track(context.Background(), TrackInput{
		ProjectID: "proj-1",
		PageURL:   "https://example.com/",
		SessionID: "sess-1",
		IP:        "8.8.8.8",
		Country:   "US",
		City:      "Dallas",
	})

	assert.NoError(t, err)
	assert.Equal(t, "evt-1", outcome.EventID)
	deduper.AssertExpectations(t)
	pusher.AssertExpectations(t)
	// Header-derived country was present, so the resolver is never consulted.
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestTrackService_Track_UnknownProject(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	projectCache.On("Get", mock.Anything, "ghost").Return(nil, nil)
	repo.On("FindByID", mock.Anything, "ghost").Return(nil, domain.ErrProjectNotFound)

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	outcome, err := svc.Track(context.Background(), TrackInput{ProjectID: "ghost", PageURL: "https://example.com/"})

	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.Nil(t, outcome)
	deduper.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything)
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestTrackService_Track_CacheHitSkipsStoreLookup(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(project, nil)
	deduper.On("Decide", mock.Anything, mock.Anything).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	_, err := svc.Track(context.Background(), TrackInput{ProjectID: "proj-1", PageURL: "https://example.com/", Country: "US"})

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestTrackService_Track_CacheFailureFallsThroughToStore(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(nil, errors.New("redis down"))
	repo.On("FindByID", mock.Anything, "proj-1").Return(project, nil)
	projectCache.On("Set", mock.Anything, project).Return(errors.New("redis down"))
	deduper.On("Decide", mock.Anything, mock.Anything).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	_, err := svc.Track(context.Background(), TrackInput{ProjectID: "proj-1", PageURL: "https://example.com/", Country: "US"})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTrackService_Track_ResolvesLocationWhenHeadersMissing(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(project, nil)
	resolver.On("Resolve", mock.Anything, "8.8.8.8").Return(geo.Location{Country: "United States", City: "Dallas"}, nil)
	deduper.On("Decide", mock.Anything, mock.MatchedBy(func(b dedup.Beacon) bool {
		return b.Country == "United States" && b.City == "Dallas"
	})).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	_, err := svc.Track(context.Background(), TrackInput{
		ProjectID: "proj-1",
		PageURL:   "https://example.com/",
		IP:        "8.8.8.8",
	})

	assert.NoError(t, err)
	resolver.AssertExpectations(t)
	deduper.AssertExpectations(t)
}

func TestTrackService_Track_ResolverFailureDegradesToUnknown(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(project, nil)
	resolver.On("Resolve", mock.Anything, "8.8.8.8").Return(geo.Location{Country: geo.Unknown, City: geo.Unknown}, errors.New("lookup timed out"))
	deduper.On("Decide", mock.Anything, mock.MatchedBy(func(b dedup.Beacon) bool {
		return b.Country == geo.Unknown && b.City == geo.Unknown
	})).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	_, err := svc.Track(context.Background(), TrackInput{
		ProjectID: "proj-1",
		PageURL:   "https://example.com/",
		IP:        "8.8.8.8",
	})

	assert.NoError(t, err)
	deduper.AssertExpectations(t)
}

func TestTrackService_Track_SkipsResolverForUnknownIP(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(project, nil)
	deduper.On("Decide", mock.Anything, mock.Anything).Return(&dedup.Outcome{EventID: "evt-1"}, nil)
	pusher.On("Push", mock.Anything, "proj-1").Return()

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	_, err := svc.Track(context.Background(), TrackInput{
		ProjectID: "proj-1",
		PageURL:   "https://example.com/",
		IP:        geo.Unknown,
	})

	assert.NoError(t, err)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestTrackService_Track_IngestFailurePropagates(t *testing.T) {
	repo := new(MockProjectRepository)
	projectCache := new(MockProjectCache)
	deduper := new(MockDeduper)
	resolver := new(MockResolver)
	pusher := new(MockPusher)

	project := &domain.Project{ID: "proj-1", Name: "Blog", UserID: "user-1"}
	projectCache.On("Get", mock.Anything, "proj-1").Return(project, nil)
	deduper.On("Decide", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))

	svc := newTrackService(repo, projectCache, deduper, resolver, pusher)
	outcome, err := svc.Track(context.Background(), TrackInput{ProjectID: "proj-1", PageURL: "https://example.com/", Country: "US"})

	assert.Error(t, err)
	assert.Nil(t, outcome)
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}
