// Package shotgrid talks to the ShotGrid REST API that backs the ticket
// tracker. It authenticates as a script user and exposes the three calls
// the webhook mapper needs: create, update and find-one.
package shotgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"tracker-hooks/internal/domain"
)

const (
	apiPrefix   = "/api/v1"
	tokenPath   = apiPrefix + "/auth/access_token"
	jsonType    = "application/json"
	filtersType = "application/vnd+shotgun.api3_array+json"

	// maxErrorBody bounds how much of a failed response ends up in errors and logs.
	maxErrorBody = 4 * 1024
)

type Config struct {
	BaseURL    string
	ScriptName string
	APIKey     string
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client that fetches and refreshes its access token
// with the script name and API key as client credentials.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	credentials := clientcredentials.Config{
		ClientID:     cfg.ScriptName,
		ClientSecret: cfg.APIKey,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	httpClient := credentials.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type singleResponse struct {
	Data resource `json:"data"`
}

type listResponse struct {
	Data []resource `json:"data"`
}

// Create creates a record of entityType and returns it.
func (c *Client) Create(ctx context.Context, entityType string, fields domain.Fields) (domain.Entity, error) {
	var response singleResponse
	path := fmt.Sprintf("%s/entity/%s", apiPrefix, url.PathEscape(entityType))
	if err := c.do(ctx, http.MethodPost, path, nil, jsonType, fields, &response); err != nil {
		return nil, fmt.Errorf("create %s: %w", entityType, err)
	}

	entity := response.Data.entity()
	c.logger.Debug("created record", zap.String("type", entityType), zap.Int("id", entity.ID()))
	return entity, nil
}

// Update changes fields on an existing record and returns it.
func (c *Client) Update(ctx context.Context, entityType string, id int, fields domain.Fields) (domain.Entity, error) {
	var response singleResponse
	path := fmt.Sprintf("%s/entity/%s/%d", apiPrefix, url.PathEscape(entityType), id)
	if err := c.do(ctx, http.MethodPut, path, nil, jsonType, fields, &response); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", entityType, id, err)
	}

	c.logger.Debug("updated record", zap.String("type", entityType), zap.Int("id", id))
	return response.Data.entity(), nil
}

// FindOne returns the first record matching query, or domain.ErrNotFound.
func (c *Client) FindOne(ctx context.Context, entityType string, query domain.Query) (domain.Entity, error) {
	params := url.Values{}
	params.Set("page[size]", "1")
	params.Set("page[number]", "1")
	if len(query.Fields) > 0 {
		params.Set("fields", strings.Join(query.Fields, ","))
	}
	if sort := sortParam(query.Order); sort != "" {
		params.Set("sort", sort)
	}

	filters := query.Filters
	if filters == nil {
		filters = []domain.Filter{}
	}

	var response listResponse
	path := fmt.Sprintf("%s/entity/%s/_search", apiPrefix, url.PathEscape(entityType))
	body := map[string]any{"filters": filters}
	if err := c.do(ctx, http.MethodPost, path, params, filtersType, body, &response); err != nil {
		return nil, fmt.Errorf("find %s: %w", entityType, err)
	}

	if len(response.Data) == 0 {
		return nil, domain.NewNotFoundError(entityType)
	}
	return response.Data[0].entity(), nil
}

// sortParam renders the REST sort parameter, e.g. "-sg_release_date,-id".
func sortParam(order []domain.Order) string {
	parts := make([]string, 0, len(order))
	for _, o := range order {
		if o.Direction == domain.Descending {
			parts = append(parts, "-"+o.Field)
		} else {
			parts = append(parts, o.Field)
		}
	}
	return strings.Join(parts, ",")
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	params url.Values,
	contentType string,
	payload any,
	out any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", jsonType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("tracking backend error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &domain.BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resource is one record in the REST response format.
type resource struct {
	Type          string                  `json:"type"`
	ID            json.Number             `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type relationship struct {
	Data any `json:"data"`
}

// entity flattens attributes and relationship data into one record.
func (r resource) entity() domain.Entity {
	entity := make(domain.Entity, len(r.Attributes)+len(r.Relationships)+2)
	for field, value := range r.Attributes {
		entity[field] = value
	}
	for field, rel := range r.Relationships {
		entity[field] = rel.Data
	}
	entity["type"] = r.Type
	if id, err := strconv.Atoi(r.ID.String()); err == nil {
		entity["id"] = id
	}
	return entity
}
