package alpha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

func TestAuth_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/account/sessions/email", r.URL.Path)
		require.Equal(t, "proj-1", r.Header.Get("X-Alpha-Project"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["email"] != "admin@org.test" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"$id":    "sess-1",
			"userId": "user-1",
			"secret": "token-abc",
			"expire": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "proj-1", zap.NewNop())
	auth := NewAuth(client)

	t.Run("Success", func(t *testing.T) {
		session, err := auth.Login(context.Background(), "admin@org.test", "pw")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", session.ID)
		assert.Equal(t, "user-1", session.UserID)
		assert.Equal(t, "token-abc", client.sessionToken())
	})

	t.Run("BadCredentials", func(t *testing.T) {
		_, err := auth.Login(context.Background(), "wrong@org.test", "pw")
		assert.ErrorIs(t, err, provider.ErrUnauthenticated)
	})
}

func TestAuth_CurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/account", r.URL.Path)
		if r.Header.Get("X-Alpha-Session") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "no session"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"$id": "user-1", "email": "admin@org.test", "name": "Admin",
			"emailVerification": true,
			"$createdAt":        "2025-01-02T03:04:05Z",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "proj-1", zap.NewNop())
	auth := NewAuth(client)

	t.Run("NoSession", func(t *testing.T) {
		_, err := auth.CurrentUser(context.Background())
		assert.ErrorIs(t, err, provider.ErrUnauthenticated)
	})

	t.Run("WithSession", func(t *testing.T) {
		client.setSession("token-abc")
		user, err := auth.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, 2025, user.CreatedAt.Year())
	})
}

func TestAuth_RegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "user already exists"})
	}))
	defer srv.Close()

	auth := NewAuth(NewClient(srv.URL, "proj-1", zap.NewNop()))
	_, err := auth.Register(context.Background(), "taken@org.test", "pw", "Someone")
	assert.ErrorIs(t, err, provider.ErrConflict)
	assert.Contains(t, err.Error(), "user already exists")
}

func TestDatabase_CRUD(t *testing.T) {
	docs := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := "/v1/databases/main/collections/members/documents"
		switch {
		case r.Method == http.MethodPost && r.URL.Path == base:
			var body struct {
				DocumentID string         `json:"documentId"`
				Data       map[string]any `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			doc := map[string]any{
				"$id":        body.DocumentID,
				"$createdAt": "2025-03-01T10:00:00Z",
				"$updatedAt": "2025-03-01T10:00:00Z",
			}
			for k, v := range body.Data {
				doc[k] = v
			}
			docs[body.DocumentID] = doc
			_ = json.NewEncoder(w).Encode(doc)

		case r.Method == http.MethodGet && r.URL.Path == base+"/m-1":
			doc, ok := docs["m-1"]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{"message": "document not found"})
				return
			}
			_ = json.NewEncoder(w).Encode(doc)

		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "document not found"})

		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "document not found"})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	db := NewDatabase(NewClient(srv.URL, "proj-1", zap.NewNop()))
	ctx := context.Background()

	t.Run("CreateThenGet", func(t *testing.T) {
		created, err := db.CreateDocument(ctx, "main", "members", "m-1", map[string]any{"name": "Ada"})
		require.NoError(t, err)
		assert.Equal(t, "m-1", created.ID)
		assert.Equal(t, "Ada", created.Data["name"])
		assert.False(t, created.CreatedAt.IsZero())
		assert.NotContains(t, created.Data, "$id", "identity fields are split out")

		got, err := db.GetDocument(ctx, "main", "members", "m-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Data["name"])
	})

	t.Run("GetAbsentNotFound", func(t *testing.T) {
		_, err := db.GetDocument(ctx, "main", "members", "missing")
		assert.ErrorIs(t, err, provider.ErrNotFound)
	})

	t.Run("DeleteAbsentSucceeds", func(t *testing.T) {
		assert.NoError(t, db.DeleteDocument(ctx, "main", "members", "missing"))
	})
}

func TestDatabase_ListEncodesQueries(t *testing.T) {
	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = r.URL.Query()["queries[]"]
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 0, "documents": []any{}})
	}))
	defer srv.Close()

	db := NewDatabase(NewClient(srv.URL, "proj-1", zap.NewNop()))
	_, err := db.ListDocuments(context.Background(), "main", "members", []provider.Query{
		provider.Filter("year", provider.OpEqual, 2),
		provider.Limit(10),
	})
	require.NoError(t, err)
	require.Len(t, gotQueries, 2)
	assert.Contains(t, gotQueries[0], `"filter"`)
	assert.Contains(t, gotQueries[1], `"limit"`)
}

func TestStorage_URLs(t *testing.T) {
	client := NewClient("https://alpha.example.test", "proj-1", zap.NewNop())
	storage := NewStorage(client)

	view := storage.FileViewURL("docs", "f-1")
	assert.Equal(t, "https://alpha.example.test/v1/storage/buckets/docs/files/f-1/view?project=proj-1", view)

	preview := storage.FilePreviewURL("docs", "f-1", 200, 100)
	assert.Contains(t, preview, "width=200")
	assert.Contains(t, preview, "height=100")

	download, err := storage.FileDownloadURL(context.Background(), "docs", "f-1")
	require.NoError(t, err)
	assert.Contains(t, download, "/download")
}

func TestStorage_CreateFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/storage/buckets/docs/files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, provider.AutoID, r.FormValue("fileId"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "minutes.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"$id": "f-42", "name": "minutes.pdf",
			"mimeType": "application/pdf", "sizeOriginal": 9, "bucketId": "docs",
		})
	}))
	defer srv.Close()

	storage := NewStorage(NewClient(srv.URL, "proj-1", zap.NewNop()))
	desc, err := storage.CreateFile(context.Background(), "docs", provider.AutoID, provider.FileUpload{
		Name:        "minutes.pdf",
		ContentType: "application/pdf",
		Data:        []byte("pdf-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "f-42", desc.ID)
	assert.Equal(t, "docs", desc.Bucket)
}

func TestStorage_DeleteAbsentSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "file not found"})
	}))
	defer srv.Close()

	storage := NewStorage(NewClient(srv.URL, "proj-1", zap.NewNop()))
	assert.NoError(t, storage.DeleteFile(context.Background(), "docs", "missing"))
}

func TestStorage_RemoteFailureIsStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "bucket offline"})
	}))
	defer srv.Close()

	storage := NewStorage(NewClient(srv.URL, "proj-1", zap.NewNop()))
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		_, err := storage.ListFiles(ctx, "docs", nil)
		var se *provider.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "list", se.Op)
		assert.Equal(t, "docs", se.Bucket)
	})

	t.Run("Create", func(t *testing.T) {
		_, err := storage.CreateFile(ctx, "docs", provider.AutoID, provider.FileUpload{
			Name: "minutes.pdf", ContentType: "application/pdf", Data: []byte("pdf-bytes"),
		})
		var se *provider.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "create", se.Op)
	})

	t.Run("Delete", func(t *testing.T) {
		err := storage.DeleteFile(ctx, "docs", "f-1")
		var se *provider.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "delete", se.Op)
	})
}
