package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/resume-matcher/internal/models"
)

type MockMatcherService struct {
	mock.Mock
}

func (m *MockMatcherService) Match(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.MatchResult), args.Error(1)
}

func (m *MockMatcherService) RefineJobDescription(ctx context.Context, req models.RefineRequest) (*models.RefinedJobDescription, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.RefinedJobDescription), args.Error(1)
}

func (m *MockMatcherService) GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (*models.CoverLetter, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CoverLetter), args.Error(1)
}

func (m *MockMatcherService) ImproveResume(ctx context.Context, req models.ImproveRequest) (*models.ResumeImprovement, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResumeImprovement), args.Error(1)
}
