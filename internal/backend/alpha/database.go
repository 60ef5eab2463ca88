package alpha

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Database = (*Database)(nil)

// Database implements the document contract over the shared client handle.
type Database struct {
	provider.UnimplementedDatabase
	client *Client
}

// NewDatabase binds the database capability to the shared handle.
func NewDatabase(client *Client) *Database {
	return &Database{client: client}
}

type documentListResponse struct {
	Total     int              `json:"total"`
	Documents []map[string]any `json:"documents"`
}

func (d *Database) ListDocuments(ctx context.Context, dbID, collectionID string, queries []provider.Query) (*provider.DocumentList, error) {
	path := fmt.Sprintf("/v1/databases/%s/collections/%s/documents", dbID, collectionID)
	var resp documentListResponse
	if err := d.client.do(ctx, http.MethodGet, path, encodeQueries(queries), nil, &resp); err != nil {
		return nil, err
	}

	list := &provider.DocumentList{Total: resp.Total, Documents: make([]provider.Document, 0, len(resp.Documents))}
	for _, raw := range resp.Documents {
		list.Documents = append(list.Documents, decodeDocument(raw))
	}
	return list, nil
}

func (d *Database) GetDocument(ctx context.Context, dbID, collectionID, id string) (*provider.Document, error) {
	path := fmt.Sprintf("/v1/databases/%s/collections/%s/documents/%s", dbID, collectionID, id)
	var raw map[string]any
	if err := d.client.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	doc := decodeDocument(raw)
	return &doc, nil
}

func (d *Database) CreateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	path := fmt.Sprintf("/v1/databases/%s/collections/%s/documents", dbID, collectionID)
	body := map[string]any{"documentId": id, "data": data}
	var raw map[string]any
	if err := d.client.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return nil, err
	}
	doc := decodeDocument(raw)
	return &doc, nil
}

func (d *Database) UpdateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	path := fmt.Sprintf("/v1/databases/%s/collections/%s/documents/%s", dbID, collectionID, id)
	body := map[string]any{"data": data}
	var raw map[string]any
	if err := d.client.do(ctx, http.MethodPatch, path, nil, body, &raw); err != nil {
		return nil, err
	}
	doc := decodeDocument(raw)
	return &doc, nil
}

// DeleteDocument is idempotent: a missing document is treated as already
// deleted so UI retry flows cannot wedge on "is it gone or not".
func (d *Database) DeleteDocument(ctx context.Context, dbID, collectionID, id string) error {
	path := fmt.Sprintf("/v1/databases/%s/collections/%s/documents/%s", dbID, collectionID, id)
	err := d.client.do(ctx, http.MethodDelete, path, nil, nil, nil)
	if errors.Is(err, provider.ErrNotFound) {
		return nil
	}
	return err
}

// decodeDocument splits the service's inline identity fields from the user
// payload.
func decodeDocument(raw map[string]any) provider.Document {
	doc := provider.Document{Data: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "$id":
			doc.ID, _ = v.(string)
		case "$createdAt":
			if s, ok := v.(string); ok {
				doc.CreatedAt = parseTime(s)
			}
		case "$updatedAt":
			if s, ok := v.(string); ok {
				doc.UpdatedAt = parseTime(s)
			}
		default:
			doc.Data[k] = v
		}
	}
	return doc
}
