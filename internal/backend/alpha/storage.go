package alpha

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Storage = (*Storage)(nil)

// Storage implements the file contract over the shared client handle. View,
// preview and download URLs are all derived from the endpoint; the service
// authorizes them with the project parameter.
type Storage struct {
	provider.UnimplementedStorage
	client *Client
}

// NewStorage binds the storage capability to the shared handle.
func NewStorage(client *Client) *Storage {
	return &Storage{client: client}
}

type fileResponse struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
	BucketID string `json:"bucketId"`
}

type fileListResponse struct {
	Total int            `json:"total"`
	Files []fileResponse `json:"files"`
}

func (s *Storage) ListFiles(ctx context.Context, bucketID string, queries []provider.Query) (*provider.FileList, error) {
	path := fmt.Sprintf("/v1/storage/buckets/%s/files", bucketID)
	var resp fileListResponse
	if err := s.client.do(ctx, http.MethodGet, path, encodeQueries(queries), nil, &resp); err != nil {
		return nil, provider.NewStorageError("list", bucketID, err)
	}

	list := &provider.FileList{Total: resp.Total, Files: make([]provider.FileDescriptor, 0, len(resp.Files))}
	for _, f := range resp.Files {
		list.Files = append(list.Files, f.toDescriptor())
	}
	return list, nil
}

func (s *Storage) FileViewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/v1/storage/buckets/%s/files/%s/view?project=%s",
		s.client.Endpoint(), bucketID, fileID, s.client.ProjectID())
}

func (s *Storage) FilePreviewURL(bucketID, fileID string, width, height int) string {
	return fmt.Sprintf("%s/v1/storage/buckets/%s/files/%s/preview?width=%d&height=%d&project=%s",
		s.client.Endpoint(), bucketID, fileID, width, height, s.client.ProjectID())
}

func (s *Storage) FileDownloadURL(_ context.Context, bucketID, fileID string) (string, error) {
	return fmt.Sprintf("%s/v1/storage/buckets/%s/files/%s/download?project=%s",
		s.client.Endpoint(), bucketID, fileID, s.client.ProjectID()), nil
}

func (s *Storage) CreateFile(ctx context.Context, bucketID, id string, upload provider.FileUpload) (*provider.FileDescriptor, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("fileId", id); err != nil {
		return nil, provider.NewStorageError("create", bucketID, err)
	}
	part, err := writer.CreateFormFile("file", upload.Name)
	if err != nil {
		return nil, provider.NewStorageError("create", bucketID, err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, provider.NewStorageError("create", bucketID, err)
	}
	if err := writer.Close(); err != nil {
		return nil, provider.NewStorageError("create", bucketID, err)
	}

	path := fmt.Sprintf("/v1/storage/buckets/%s/files", bucketID)
	var resp fileResponse
	if err := s.client.doMultipart(ctx, path, writer.FormDataContentType(), &buf, &resp); err != nil {
		return nil, provider.NewStorageError("create", bucketID, err)
	}
	desc := resp.toDescriptor()
	return &desc, nil
}

// DeleteFile is idempotent by contract, same as document deletion.
func (s *Storage) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	path := fmt.Sprintf("/v1/storage/buckets/%s/files/%s", bucketID, fileID)
	err := s.client.do(ctx, http.MethodDelete, path, nil, nil, nil)
	if err == nil || errors.Is(err, provider.ErrNotFound) {
		return nil
	}
	return provider.NewStorageError("delete", bucketID, err)
}

func (f *fileResponse) toDescriptor() provider.FileDescriptor {
	return provider.FileDescriptor{
		ID:       f.ID,
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Size:     f.Size,
		Bucket:   f.BucketID,
	}
}
