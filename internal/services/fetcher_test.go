package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/mocks"
)

func TestDriveDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" ||
			r.URL.Path != "/files/abc123" ||
			r.URL.Query().Get("alt") != "media" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, "unexpected request %s %s", r.URL, r.Header.Get("Authorization"))
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	drive := NewDriveService(config.DriveConfig{BaseURL: srv.URL + "/"}, 1024, srv.Client(), zap.NewNop())

	data, err := drive.Download(context.Background(), "abc123", "tok")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 body"), data)
}

func TestDriveDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"File not found"}}`))
	}))
	defer srv.Close()

	drive := NewDriveService(config.DriveConfig{BaseURL: srv.URL}, 1024, srv.Client(), zap.NewNop())

	data, err := drive.Download(context.Background(), "missing", "tok")

	assert.Nil(t, data)
	assert.Equal(t, KindFetchFailed, KindOf(err))
	assert.Contains(t, err.Error(), "File not found")
}

func TestDriveDownloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer srv.Close()

	drive := NewDriveService(config.DriveConfig{BaseURL: srv.URL}, 16, srv.Client(), zap.NewNop())

	_, err := drive.Download(context.Background(), "big", "tok")

	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestDriveLink(t *testing.T) {
	drive := NewDriveService(config.DriveConfig{}, 0, nil, zap.NewNop())
	assert.Equal(t, "https://drive.google.com/file/d/abc123/view", drive.Link("abc123"))
}

func TestObjectStorageDownload(t *testing.T) {
	getter := new(mocks.MockObjectGetter)
	getter.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "resumes" && *in.Key == "u/1.pdf"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("pdf")))}, nil)

	store := NewObjectStorageService(getter, "resumes", 1024)

	data, err := store.Download(context.Background(), "u/1.pdf")

	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), data)
	assert.Equal(t, "s3://resumes/u/1.pdf", store.Link("u/1.pdf"))
	getter.AssertExpectations(t)
}

func TestObjectStorageDownloadFailure(t *testing.T) {
	getter := new(mocks.MockObjectGetter)
	getter.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("NoSuchKey"))

	store := NewObjectStorageService(getter, "resumes", 1024)

	_, err := store.Download(context.Background(), "missing.pdf")

	assert.Equal(t, KindFetchFailed, KindOf(err))
	assert.ErrorContains(t, err, "NoSuchKey")
}
