package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/domain/core/aggregates"
	"futuremap/infrastructure/observability"
	pkgerrors "futuremap/pkg/errors"
)

// PathStoreClient saves and loads career paths on the backend
type PathStoreClient struct {
	client   *client
	savePath string
	loadPath string
}

// NewPathStoreClient creates a new PathStoreClient. httpClient may be nil.
func NewPathStoreClient(cfg ClientConfig, savePath, loadPath string, httpClient *http.Client, collector *observability.Collector, logger *zap.Logger) *PathStoreClient {
	return &PathStoreClient{
		client:   newClient("path-store", cfg, httpClient, collector, logger),
		savePath: savePath,
		loadPath: loadPath,
	}
}

type saveRequest struct {
	PathID      string                          `json:"pathId"`
	Cards       []aggregates.CardSnapshot       `json:"cards"`
	Connections []aggregates.ConnectionSnapshot `json:"connections"`
}

type saveResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type loadRequest struct {
	UserID string `json:"user_id"`
}

type loadResponse struct {
	Success bool                        `json:"success"`
	Data    []aggregates.CanvasSnapshot `json:"data"`
	Error   string                      `json:"error"`
	Message string                      `json:"message"`
}

// SavePath implements ports.PathStore. The request is sent once.
func (s *PathStoreClient) SavePath(ctx context.Context, session ports.Session, snapshot aggregates.CanvasSnapshot) (ports.SaveOutcome, error) {
	if !session.HasCredential() {
		return ports.SaveOutcome{Success: false, Message: "no authentication token found, please log in"}, nil
	}

	req := saveRequest{PathID: snapshot.ID, Cards: snapshot.Cards, Connections: snapshot.Connections}
	resp, err := s.client.do(ctx, http.MethodPost, s.savePath, session, req)
	if err != nil {
		return ports.SaveOutcome{}, pkgerrors.NewExternalError("path-store", err)
	}

	var body saveResponse
	decodeErr := json.Unmarshal(resp.body, &body)

	if !isSuccess(resp.status) {
		msg := body.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP error, status %d", resp.status)
		}
		return ports.SaveOutcome{Success: false, Message: msg}, nil
	}
	if decodeErr != nil {
		return ports.SaveOutcome{Success: false, Message: "malformed save response"}, nil
	}
	if body.Success != nil && !*body.Success {
		msg := body.Error
		if msg == "" {
			msg = body.Message
		}
		return ports.SaveOutcome{Success: false, Message: msg}, nil
	}

	msg := body.Message
	if msg == "" {
		msg = "career path saved"
	}
	return ports.SaveOutcome{Success: true, Message: msg}, nil
}

// LoadPaths implements ports.PathStore
func (s *PathStoreClient) LoadPaths(ctx context.Context, session ports.Session) ([]aggregates.CanvasSnapshot, error) {
	if session.UserID == "" {
		return nil, pkgerrors.NewInvalidArgumentError("user id is required to load paths")
	}

	resp, err := s.client.do(ctx, http.MethodPost, s.loadPath, session, loadRequest{UserID: session.UserID})
	if err != nil {
		return nil, pkgerrors.NewExternalError("path-store", err)
	}

	var body loadResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, pkgerrors.NewExternalError("path-store", fmt.Errorf("malformed load response: %w", err))
	}
	if !isSuccess(resp.status) || !body.Success {
		msg := body.Error
		if msg == "" {
			msg = body.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("load rejected with status %d", resp.status)
		}
		appErr := pkgerrors.NewExternalError("path-store", errors.New(msg)).WithDetail("status", resp.status)
		appErr.Message = msg
		return nil, appErr
	}
	return body.Data, nil
}
