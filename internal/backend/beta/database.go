package beta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Database = (*Database)(nil)

// Database implements the document contract over the shared client handle.
// Queries are posted as structured JSON; the service evaluates them
// server-side.
type Database struct {
	provider.UnimplementedDatabase
	client *Client
}

// NewDatabase binds the database capability to the shared handle.
func NewDatabase(client *Client) *Database {
	return &Database{client: client}
}

type wireDocument struct {
	ID         string         `json:"id"`
	CreateTime string         `json:"createTime"`
	UpdateTime string         `json:"updateTime"`
	Fields     map[string]any `json:"fields"`
}

type queryResponse struct {
	Total     int            `json:"total"`
	Documents []wireDocument `json:"documents"`
}

func (d *Database) collectionPath(dbID, collectionID string) string {
	return fmt.Sprintf("/v1/projects/%s/databases/%s/collections/%s",
		d.client.projectID, dbID, collectionID)
}

func (d *Database) ListDocuments(ctx context.Context, dbID, collectionID string, queries []provider.Query) (*provider.DocumentList, error) {
	body := map[string]any{"queries": queries}
	if queries == nil {
		body["queries"] = []provider.Query{}
	}

	var resp queryResponse
	path := d.collectionPath(dbID, collectionID) + "/documents:query"
	if err := d.client.call(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	list := &provider.DocumentList{Total: resp.Total, Documents: make([]provider.Document, 0, len(resp.Documents))}
	for _, w := range resp.Documents {
		list.Documents = append(list.Documents, w.toDocument())
	}
	return list, nil
}

func (d *Database) GetDocument(ctx context.Context, dbID, collectionID, id string) (*provider.Document, error) {
	var w wireDocument
	path := d.collectionPath(dbID, collectionID) + "/documents/" + id
	if err := d.client.call(ctx, http.MethodGet, path, nil, &w); err != nil {
		return nil, err
	}
	doc := w.toDocument()
	return &doc, nil
}

func (d *Database) CreateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	body := map[string]any{"documentId": id, "fields": data}
	var w wireDocument
	path := d.collectionPath(dbID, collectionID) + "/documents"
	if err := d.client.call(ctx, http.MethodPost, path, body, &w); err != nil {
		return nil, err
	}
	doc := w.toDocument()
	return &doc, nil
}

func (d *Database) UpdateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	body := map[string]any{"fields": data}
	var w wireDocument
	path := d.collectionPath(dbID, collectionID) + "/documents/" + id
	if err := d.client.call(ctx, http.MethodPatch, path, body, &w); err != nil {
		return nil, err
	}
	doc := w.toDocument()
	return &doc, nil
}

// DeleteDocument is idempotent: absent ids are already deleted.
func (d *Database) DeleteDocument(ctx context.Context, dbID, collectionID, id string) error {
	path := d.collectionPath(dbID, collectionID) + "/documents/" + id
	err := d.client.call(ctx, http.MethodDelete, path, nil, nil)
	if errors.Is(err, provider.ErrNotFound) {
		return nil
	}
	return err
}

func (w *wireDocument) toDocument() provider.Document {
	doc := provider.Document{ID: w.ID, Data: w.Fields}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	if t, err := time.Parse(time.RFC3339, w.CreateTime); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, w.UpdateTime); err == nil {
		doc.UpdatedAt = t
	}
	return doc
}
