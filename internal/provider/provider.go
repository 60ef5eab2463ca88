// Package provider defines the capability contracts (Auth, Database, Storage)
// that every backend adapter must satisfy, independent of vendor.
//
// Application code never imports a concrete adapter; it obtains instances from
// the factory and talks to these interfaces only. Consumers may feature-detect
// support by checking the accessor result for nil.
package provider

import (
	"context"
	"time"
)

// AutoID requests a server/adapter generated identifier on create operations.
const AutoID = "unique()"

// User is an authenticated account as reported by the active auth backend.
type User struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
	CreatedAt     time.Time
}

// Session is an active login session.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Document is an opaque record: a field map plus the three identity fields
// every backend injects. The core transports documents, it never interprets
// field semantics.
type Document struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]any
}

// DocumentList is one page of documents plus the backend's total count.
type DocumentList struct {
	Documents []Document
	Total     int
}

// FileDescriptor describes a stored object.
type FileDescriptor struct {
	ID       string
	Name     string
	MIMEType string
	Size     int64
	Bucket   string
}

// FileList is one page of file descriptors plus the backend's total count.
type FileList struct {
	Files []FileDescriptor
	Total int
}

// FileUpload is the input to Storage.CreateFile.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Auth is the session-lifecycle contract.
type Auth interface {
	// CurrentUser returns the account bound to the active session, or
	// ErrUnauthenticated when there is none.
	CurrentUser(ctx context.Context) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context) error
	// Register fails with ErrConflict when the email is already registered.
	Register(ctx context.Context, email, password, name string) (*User, error)
	SendPasswordRecovery(ctx context.Context, email, redirectURL string) error
	ConfirmPasswordRecovery(ctx context.Context, userID, secret, newPassword string) error
	SendVerification(ctx context.Context, redirectURL string) error
	ConfirmVerification(ctx context.Context, userID, secret string) error
}

// Database is the document CRUD + query contract.
type Database interface {
	ListDocuments(ctx context.Context, dbID, collectionID string, queries []Query) (*DocumentList, error)
	// GetDocument fails with ErrNotFound when the id is absent.
	GetDocument(ctx context.Context, dbID, collectionID, id string) (*Document, error)
	// CreateDocument stores data under id; pass AutoID to let the backend
	// choose one.
	CreateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*Document, error)
	// UpdateDocument fails with ErrNotFound when the id is absent.
	UpdateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*Document, error)
	// DeleteDocument is idempotent: deleting an absent id is not an error.
	DeleteDocument(ctx context.Context, dbID, collectionID, id string) error
}

// Storage is the file CRUD + URL derivation contract.
type Storage interface {
	ListFiles(ctx context.Context, bucketID string, queries []Query) (*FileList, error)
	// FileViewURL returns a URL for inline display of the file.
	FileViewURL(bucketID, fileID string) string
	// FilePreviewURL returns a URL for a resized rendition. Backends without
	// native resizing may return the view URL unchanged.
	FilePreviewURL(bucketID, fileID string, width, height int) string
	// FileDownloadURL returns a URL that forces download; depending on the
	// backend this may require a network round trip for signing.
	FileDownloadURL(ctx context.Context, bucketID, fileID string) (string, error)
	// CreateFile stores the upload under id; pass AutoID to let the backend
	// choose one. The descriptor carries the final id.
	CreateFile(ctx context.Context, bucketID, id string, upload FileUpload) (*FileDescriptor, error)
	// DeleteFile is idempotent: deleting an absent id is not an error.
	DeleteFile(ctx context.Context, bucketID, fileID string) error
}
