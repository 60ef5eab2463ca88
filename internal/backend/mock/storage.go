package mock

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/FairForge/backplane/internal/provider"
)

func (b *Backend) ListFiles(ctx context.Context, bucketID string, queries []provider.Query) (*provider.FileList, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var files []provider.FileDescriptor
	for _, f := range b.files[bucketID] {
		files = append(files, f.desc)
	}
	// Map order is random; fix a baseline order before directives run.
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })

	files = applyQueries(files, queries, fileFieldValue)
	total := len(files)
	files = paginate(files, queries)

	return &provider.FileList{Files: files, Total: total}, nil
}

func fileFieldValue(f provider.FileDescriptor, field string) (any, bool) {
	switch field {
	case "$id":
		return f.ID, true
	case "name":
		return f.Name, true
	case "mimeType":
		return f.MIMEType, true
	case "sizeOriginal":
		return f.Size, true
	case "bucketId":
		return f.Bucket, true
	}
	return nil, false
}

func (b *Backend) FileViewURL(bucketID, fileID string) string {
	return fmt.Sprintf("mock://storage/%s/%s/view", bucketID, fileID)
}

func (b *Backend) FilePreviewURL(bucketID, fileID string, width, height int) string {
	return fmt.Sprintf("mock://storage/%s/%s/preview?w=%d&h=%d", bucketID, fileID, width, height)
}

func (b *Backend) FileDownloadURL(ctx context.Context, bucketID, fileID string) (string, error) {
	if err := b.wait(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("mock://storage/%s/%s/download", bucketID, fileID), nil
}

func (b *Backend) CreateFile(ctx context.Context, bucketID, id string, upload provider.FileUpload) (*provider.FileDescriptor, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if id == "" || id == provider.AutoID {
		id = uuid.New().String()
	}
	if b.files[bucketID] == nil {
		b.files[bucketID] = make(map[string]*storedFile)
	}
	if _, exists := b.files[bucketID][id]; exists {
		return nil, provider.ErrConflict
	}

	desc := provider.FileDescriptor{
		ID:       id,
		Name:     upload.Name,
		MIMEType: upload.ContentType,
		Size:     int64(len(upload.Data)),
		Bucket:   bucketID,
	}
	data := make([]byte, len(upload.Data))
	copy(data, upload.Data)
	b.files[bucketID][id] = &storedFile{desc: desc, data: data}

	cp := desc
	return &cp, nil
}

// DeleteFile on an absent id is a silent no-op.
func (b *Backend) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.files[bucketID], fileID)
	return nil
}
