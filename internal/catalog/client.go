package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/explorador/internal/domain"
)

const (
	// DefaultBaseURL is the public Colombia catalog API
	DefaultBaseURL = "https://api-colombia.com/api/v1"

	defaultTimeout = 30 * time.Second
	userAgent      = "Explorador/1.0"
)

// Client implements domain.CatalogRepository over the catalog REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new catalog API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// getJSON performs a GET and decodes the JSON body into dest
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "url", reqURL, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrCatalogOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("catalog request error", "status", resp.StatusCode, "url", reqURL)
		return &domain.HTTPError{Status: resp.StatusCode, URL: reqURL}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ListDepartments returns every department, normalized
func (c *Client) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var dtos []departmentDTO
	if err := c.getJSON(ctx, "/Department", &dtos); err != nil {
		return nil, err
	}
	return mapDepartments(dtos), nil
}

// GetDepartment returns one department with its detail fields
func (c *Client) GetDepartment(ctx context.Context, id int) (*domain.Department, error) {
	var dto departmentDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/Department/%d", id), &dto); err != nil {
		var httpErr *domain.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", domain.ErrDepartmentNotFound, err)
		}
		return nil, err
	}
	dep := dto.toDomain()
	return &dep, nil
}

// ListCities returns the municipalities of a department
func (c *Client) ListCities(ctx context.Context, departmentID int) ([]domain.City, error) {
	var dtos []cityDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/Department/%d/cities", departmentID), &dtos); err != nil {
		return nil, err
	}
	return mapCities(dtos, departmentID), nil
}
