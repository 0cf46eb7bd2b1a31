package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

type MockDriveService struct {
	mock.Mock
}

func (m *MockDriveService) Download(ctx context.Context, fileID, accessToken string) ([]byte, error) {
	args := m.Called(ctx, fileID, accessToken)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDriveService) Link(fileID string) string {
	return m.Called(fileID).String(0)
}

type MockObjectStorageService struct {
	mock.Mock
}

func (m *MockObjectStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorageService) Link(key string) string {
	return m.Called(key).String(0)
}

type MockObjectGetter struct {
	mock.Mock
}

func (m *MockObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}
