package gamma

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

func TestStorage_CreateFile(t *testing.T) {
	var uploaded []byte

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		uploaded = body
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/presign-upload", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "docs", req["bucket"])
		assert.Equal(t, "minutes.pdf", req["fileName"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"uploadUrl":   target.URL + "/docs/f-77",
			"finalFileId": "f-77",
		})
	}))
	defer proxy.Close()

	s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())
	desc, err := s.CreateFile(context.Background(), "docs", provider.AutoID, provider.FileUpload{
		Name:        "minutes.pdf",
		ContentType: "application/pdf",
		Data:        []byte("pdf-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "f-77", desc.ID, "server-chosen final id wins")
	assert.Equal(t, []byte("pdf-bytes"), uploaded)
}

func TestStorage_CreateFileFailures(t *testing.T) {
	t.Run("PresignRejected", func(t *testing.T) {
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer proxy.Close()

		s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())
		_, err := s.CreateFile(context.Background(), "docs", provider.AutoID, provider.FileUpload{Name: "x"})
		var se *provider.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "presign-upload", se.Op)
	})

	t.Run("UploadRejected", func(t *testing.T) {
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer target.Close()

		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"uploadUrl":   target.URL + "/docs/f-1",
				"finalFileId": "f-1",
			})
		}))
		defer proxy.Close()

		s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())
		_, err := s.CreateFile(context.Background(), "docs", "f-1", provider.FileUpload{Name: "x"})
		var se *provider.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "upload", se.Op)
	})
}

func TestStorage_URLs(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/download", r.URL.Path)
		assert.Equal(t, "docs", r.URL.Query().Get("bucket"))
		assert.Equal(t, "f-1", r.URL.Query().Get("file"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url": "https://store.example.test/docs/f-1?X-Amz-Signature=abc",
		})
	}))
	defer proxy.Close()

	s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())

	t.Run("ViewIsDerivedLocally", func(t *testing.T) {
		assert.Equal(t, "https://cdn.example.test/docs/f-1", s.FileViewURL("docs", "f-1"))
	})

	t.Run("PreviewAliasesView", func(t *testing.T) {
		assert.Equal(t, s.FileViewURL("docs", "f-1"), s.FilePreviewURL("docs", "f-1", 200, 100))
	})

	t.Run("DownloadIsSignedAndDistinct", func(t *testing.T) {
		download, err := s.FileDownloadURL(context.Background(), "docs", "f-1")
		require.NoError(t, err)
		assert.NotEqual(t, s.FileViewURL("docs", "f-1"), download)
		assert.Contains(t, download, "X-Amz-Signature")
	})
}

func TestStorage_DeleteAndList(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/storage/delete":
			w.WriteHeader(http.StatusNoContent)
		case "/storage/list":
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "docs", req["bucket"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total": 2,
				"files": []map[string]any{
					{"id": "f-1", "name": "a.pdf", "contentType": "application/pdf", "size": 10},
					{"id": "f-2", "name": "b.png", "contentType": "image/png", "size": 20},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer proxy.Close()

	s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())
	ctx := context.Background()

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, s.DeleteFile(ctx, "docs", "f-1"))
	})

	t.Run("List", func(t *testing.T) {
		list, err := s.ListFiles(ctx, "docs", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Total)
		require.Len(t, list.Files, 2)
		assert.Equal(t, "docs", list.Files[0].Bucket)
	})
}

func TestStorage_ProxyErrorIsStorageError(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	s := NewStorage(proxy.URL, "https://cdn.example.test", zap.NewNop())

	err := s.DeleteFile(context.Background(), "docs", "f-1")
	var se *provider.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "docs", se.Bucket)

	_, err = s.ListFiles(context.Background(), "docs", nil)
	assert.ErrorAs(t, err, &se)
}
