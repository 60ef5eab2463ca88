package provider

import "context"

// Embeddable contract bases. An adapter that covers only part of a contract
// embeds the matching base so every operation it does not override fails with
// ErrNotImplemented instead of breaking the build when the contract grows.

// UnimplementedAuth fails every Auth operation with ErrNotImplemented.
type UnimplementedAuth struct{}

func (UnimplementedAuth) CurrentUser(context.Context) (*User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedAuth) Login(context.Context, string, string) (*Session, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedAuth) Logout(context.Context) error { return ErrNotImplemented }

func (UnimplementedAuth) Register(context.Context, string, string, string) (*User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedAuth) SendPasswordRecovery(context.Context, string, string) error {
	return ErrNotImplemented
}

func (UnimplementedAuth) ConfirmPasswordRecovery(context.Context, string, string, string) error {
	return ErrNotImplemented
}

func (UnimplementedAuth) SendVerification(context.Context, string) error {
	return ErrNotImplemented
}

func (UnimplementedAuth) ConfirmVerification(context.Context, string, string) error {
	return ErrNotImplemented
}

// UnimplementedDatabase fails every Database operation with ErrNotImplemented.
type UnimplementedDatabase struct{}

func (UnimplementedDatabase) ListDocuments(context.Context, string, string, []Query) (*DocumentList, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedDatabase) GetDocument(context.Context, string, string, string) (*Document, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedDatabase) CreateDocument(context.Context, string, string, string, map[string]any) (*Document, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedDatabase) UpdateDocument(context.Context, string, string, string, map[string]any) (*Document, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedDatabase) DeleteDocument(context.Context, string, string, string) error {
	return ErrNotImplemented
}

// UnimplementedStorage fails every Storage operation with ErrNotImplemented.
type UnimplementedStorage struct{}

func (UnimplementedStorage) ListFiles(context.Context, string, []Query) (*FileList, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedStorage) FileViewURL(string, string) string { return "" }

func (UnimplementedStorage) FilePreviewURL(string, string, int, int) string { return "" }

func (UnimplementedStorage) FileDownloadURL(context.Context, string, string) (string, error) {
	return "", ErrNotImplemented
}

func (UnimplementedStorage) CreateFile(context.Context, string, string, FileUpload) (*FileDescriptor, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedStorage) DeleteFile(context.Context, string, string) error {
	return ErrNotImplemented
}
