package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/domain/core/entities"
	"futuremap/infrastructure/observability"
	pkgerrors "futuremap/pkg/errors"
)

// CatalogClient fetches card templates grouped by category
type CatalogClient struct {
	client *client
	path   string
}

// NewCatalogClient creates a new CatalogClient. httpClient may be nil.
func NewCatalogClient(cfg ClientConfig, path string, httpClient *http.Client, collector *observability.Collector, logger *zap.Logger) *CatalogClient {
	return &CatalogClient{
		client: newClient("catalog", cfg, httpClient, collector, logger),
		path:   path,
	}
}

// FetchCatalog implements ports.CatalogSource
func (c *CatalogClient) FetchCatalog(ctx context.Context, session ports.Session) (*entities.Catalog, error) {
	if !session.HasCredential() {
		return nil, pkgerrors.NewCatalogUnavailableError("no authentication token found, please log in")
	}

	resp, err := c.client.do(ctx, http.MethodGet, c.path, session, nil)
	if err != nil {
		return nil, pkgerrors.NewCatalogUnavailableError("failed to load flashcards, please try again later").WithCause(err)
	}
	if !isSuccess(resp.status) {
		msg := errorField(resp.body)
		if msg == "" {
			msg = fmt.Sprintf("HTTP error, status %d", resp.status)
		}
		return nil, pkgerrors.NewCatalogUnavailableError(msg).WithDetail("status", resp.status)
	}

	return decodeCatalog(resp.body)
}

// decodeCatalog reads {"<category>": {icon, color, items}}. A top-level
// "error" key means the backend refused the request.
func decodeCatalog(body []byte) (*entities.Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, pkgerrors.NewCatalogUnavailableError("malformed catalog response").WithCause(err)
	}

	if errRaw, ok := raw["error"]; ok {
		var msg string
		if err := json.Unmarshal(errRaw, &msg); err != nil || msg == "" {
			msg = "catalog request rejected"
		}
		return nil, pkgerrors.NewCatalogUnavailableError(msg)
	}

	categories := make(map[string]entities.CatalogCategory, len(raw))
	for name, data := range raw {
		var category entities.CatalogCategory
		if err := json.Unmarshal(data, &category); err != nil {
			return nil, pkgerrors.NewCatalogUnavailableError(fmt.Sprintf("malformed catalog category '%s'", name)).WithCause(err)
		}
		categories[name] = category
	}
	return entities.NewCatalog(categories), nil
}
