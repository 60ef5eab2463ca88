// Package gamma adapts the storage contract to an S3-compatible object store
// that cannot hold credentials client-side. Every credentialed operation is
// an HTTP call to the trusted signing intermediary; only the static view URL
// is derived locally.
package gamma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Storage = (*Storage)(nil)

// Storage implements the file contract against the intermediary.
type Storage struct {
	provider.UnimplementedStorage
	proxyURL   string
	publicBase string
	httpc      *http.Client
	logger     *zap.Logger
}

// NewStorage creates the proxy-mediated adapter. proxyURL is the
// intermediary base, publicBase the anonymous-read URL root.
func NewStorage(proxyURL, publicBase string, logger *zap.Logger) *Storage {
	return &Storage{
		proxyURL:   strings.TrimRight(proxyURL, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		httpc:      &http.Client{},
		logger:     logger,
	}
}

type presignUploadRequest struct {
	Bucket      string `json:"bucket"`
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}

type presignUploadResponse struct {
	UploadURL   string `json:"uploadUrl"`
	FinalFileID string `json:"finalFileId"`
}

type listRequest struct {
	Bucket  string           `json:"bucket"`
	Queries []provider.Query `json:"queries"`
}

type listResponse struct {
	Total int `json:"total"`
	Files []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
	} `json:"files"`
}

func (s *Storage) ListFiles(ctx context.Context, bucketID string, queries []provider.Query) (*provider.FileList, error) {
	req := listRequest{Bucket: bucketID, Queries: queries}
	if req.Queries == nil {
		req.Queries = []provider.Query{}
	}

	var resp listResponse
	if err := s.post(ctx, "/storage/list", bucketID, req, &resp); err != nil {
		return nil, err
	}

	list := &provider.FileList{Total: resp.Total, Files: make([]provider.FileDescriptor, 0, len(resp.Files))}
	for _, f := range resp.Files {
		list.Files = append(list.Files, provider.FileDescriptor{
			ID:       f.ID,
			Name:     f.Name,
			MIMEType: f.ContentType,
			Size:     f.Size,
			Bucket:   bucketID,
		})
	}
	return list, nil
}

// FileViewURL is derived from the public base with no network call.
func (s *Storage) FileViewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBase, bucketID, fileID)
}

// FilePreviewURL returns the full-size view URL. The object store has no
// native resizing, so callers get the unresized file. Known limitation.
func (s *Storage) FilePreviewURL(bucketID, fileID string, _, _ int) string {
	s.logger.Debug("preview unsupported, serving full-size view",
		zap.String("bucket", bucketID),
		zap.String("file", fileID))
	return s.FileViewURL(bucketID, fileID)
}

// FileDownloadURL fetches a signed, time-limited URL from the intermediary.
func (s *Storage) FileDownloadURL(ctx context.Context, bucketID, fileID string) (string, error) {
	u := fmt.Sprintf("%s/storage/download?bucket=%s&file=%s",
		s.proxyURL, url.QueryEscape(bucketID), url.QueryEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", provider.NewStorageError("download-url", bucketID, err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", provider.NewStorageError("download-url", bucketID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", provider.NewStorageError("download-url", bucketID,
			fmt.Errorf("intermediary returned status %d", resp.StatusCode))
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", provider.NewStorageError("download-url", bucketID, err)
	}
	return out.URL, nil
}

// CreateFile requests a single-use upload authorization from the
// intermediary, then uploads directly against the authorization target. The
// intermediary chooses the final file id.
func (s *Storage) CreateFile(ctx context.Context, bucketID, id string, upload provider.FileUpload) (*provider.FileDescriptor, error) {
	presign := presignUploadRequest{
		Bucket:      bucketID,
		FileID:      id,
		ContentType: upload.ContentType,
		FileName:    upload.Name,
	}
	var grant presignUploadResponse
	if err := s.post(ctx, "/storage/presign-upload", bucketID, presign, &grant); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, grant.UploadURL, bytes.NewReader(upload.Data))
	if err != nil {
		return nil, provider.NewStorageError("upload", bucketID, err)
	}
	if upload.ContentType != "" {
		req.Header.Set("Content-Type", upload.ContentType)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, provider.NewStorageError("upload", bucketID, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, provider.NewStorageError("upload", bucketID,
			fmt.Errorf("upload target returned status %d", resp.StatusCode))
	}

	return &provider.FileDescriptor{
		ID:       grant.FinalFileID,
		Name:     upload.Name,
		MIMEType: upload.ContentType,
		Size:     int64(len(upload.Data)),
		Bucket:   bucketID,
	}, nil
}

// DeleteFile proxies the delete. The intermediary treats absent objects as
// already deleted, keeping the idempotent contract.
func (s *Storage) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	body := map[string]string{"bucket": bucketID, "fileId": fileID}
	return s.post(ctx, "/storage/delete", bucketID, body, nil)
}

func (s *Storage) post(ctx context.Context, path, bucket string, body, out any) error {
	op := strings.TrimPrefix(path, "/storage/")

	data, err := json.Marshal(body)
	if err != nil {
		return provider.NewStorageError(op, bucket, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.proxyURL+path, bytes.NewReader(data))
	if err != nil {
		return provider.NewStorageError(op, bucket, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return provider.NewStorageError(op, bucket, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return provider.NewStorageError(op, bucket,
			fmt.Errorf("intermediary returned status %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return provider.NewStorageError(op, bucket, err)
		}
	}
	return nil
}
