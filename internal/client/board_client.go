package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/metrics"
	"collab-board/internal/store"
)

var _ store.Remote = (*BoardClient)(nil)

// BoardClient talks to the board service REST API on behalf of one user.
// Failures are mapped onto the domain sentinel errors.
type BoardClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewBoardClient creates a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api/boards-service.
func NewBoardClient(baseURL, token string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *BoardClient {
	return &BoardClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends body as JSON and decodes the "data" field of a success payload
// into out. out may be nil.
func (c *BoardClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(url, method, statusCode, duration, err)

	if err != nil {
		c.logger.Warn("Board API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err))
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrRemoteFailure)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v: %w", err, domain.ErrRemoteFailure)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %v: %w", err, domain.ErrRemoteFailure)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %v: %w", err, domain.ErrRemoteFailure)
	}
	return nil
}

func (c *BoardClient) statusError(method, path string, status int, raw []byte) error {
	var body apiError
	message := http.StatusText(status)
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		message = body.Error.Message
	}

	c.logger.Debug("Board API returned non-success status",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", status),
		zap.String("code", body.Error.Code))

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, domain.ErrNotFound)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, domain.ErrAccessDenied)
	case http.StatusBadRequest:
		return &domain.ValidationError{Field: "request", Reason: message}
	default:
		return fmt.Errorf("%s %s returned %d: %s: %w", method, path, status, message, domain.ErrRemoteFailure)
	}
}

func (c *BoardClient) boardCall(ctx context.Context, method, path string, body interface{}) (*domain.Board, error) {
	var resp dto.BoardResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	board := resp.ToDomain()
	return &board, nil
}

func (c *BoardClient) FetchBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return c.boardCall(ctx, http.MethodGet, "/boards/"+id.String(), nil)
}

func (c *BoardClient) FetchBoardsForUser(ctx context.Context) ([]domain.Board, error) {
	var resp []dto.BoardResponse
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &resp); err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(resp))
	for _, b := range resp {
		boards = append(boards, b.ToDomain())
	}
	return boards, nil
}

func (c *BoardClient) CreateBoard(ctx context.Context, title, description string) (*domain.Board, error) {
	return c.boardCall(ctx, http.MethodPost, "/boards", dto.CreateBoardRequest{Title: title, Description: description})
}

// UpdateBoard sends only the fields set on patch. A non-nil empty Columns is
// sent as [] and clears the board.
func (c *BoardClient) UpdateBoard(ctx context.Context, id uuid.UUID, patch store.BoardPatch) (*domain.Board, error) {
	req := dto.UpdateBoardRequest{
		Title:       patch.Title,
		Description: patch.Description,
		Order:       patch.Order,
	}
	if patch.Columns != nil {
		columns := patch.Columns
		req.Columns = &columns
	}
	return c.boardCall(ctx, http.MethodPatch, "/boards/"+id.String(), req)
}

func (c *BoardClient) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+id.String(), nil, nil)
}

func (c *BoardClient) ShareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID, perm domain.SharePermission) (*domain.Board, error) {
	return c.boardCall(ctx, http.MethodPost, "/boards/"+ref.BoardID.String()+"/shares", dto.ShareRequest{
		Level:      ref.Level,
		EntityID:   ref.ID,
		UserID:     userID,
		Permission: perm,
	})
}

func (c *BoardClient) UnshareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID) (*domain.Board, error) {
	return c.boardCall(ctx, http.MethodDelete, "/boards/"+ref.BoardID.String()+"/shares", dto.UnshareRequest{
		Level:    ref.Level,
		EntityID: ref.ID,
		UserID:   userID,
	})
}

func (c *BoardClient) ListLabels(ctx context.Context) ([]domain.Label, error) {
	var resp []dto.LabelResponse
	if err := c.do(ctx, http.MethodGet, "/labels", nil, &resp); err != nil {
		return nil, err
	}
	labels := make([]domain.Label, 0, len(resp))
	for _, l := range resp {
		labels = append(labels, l.ToDomain())
	}
	return labels, nil
}

func (c *BoardClient) labelCall(ctx context.Context, method, path string, body interface{}) (*domain.Label, error) {
	var resp dto.LabelResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	label := resp.ToDomain()
	return &label, nil
}

func (c *BoardClient) CreateLabel(ctx context.Context, name, color string) (*domain.Label, error) {
	return c.labelCall(ctx, http.MethodPost, "/labels", dto.CreateLabelRequest{Name: name, Color: color})
}

func (c *BoardClient) UpdateLabel(ctx context.Context, id uuid.UUID, name, color string) (*domain.Label, error) {
	return c.labelCall(ctx, http.MethodPut, "/labels/"+id.String(), dto.UpdateLabelRequest{Name: name, Color: color})
}

func (c *BoardClient) DeleteLabel(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+id.String(), nil, nil)
}

func (c *BoardClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(resp))
	for _, u := range resp {
		users = append(users, u.ToDomain())
	}
	return users, nil
}

// UpsertProfile registers the caller's display name so others can find them
func (c *BoardClient) UpsertProfile(ctx context.Context, name, email string) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodPut, "/users/me", dto.UpsertProfileRequest{Name: name, Email: email}, &resp); err != nil {
		return nil, err
	}
	user := resp.ToDomain()
	return &user, nil
}

// IsRemoteFailure reports whether err came from transport or server trouble
// rather than a rejected request.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, domain.ErrRemoteFailure)
}
