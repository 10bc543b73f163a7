package peptideapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// Client talks to the public and admin endpoints of the catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
}

// NewClient constructs a Client. A zero timeout defaults to 15s.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		debug:      cfg.Debug,
	}
}

// GetPeptides returns the public catalog.
func (c *Client) GetPeptides(ctx context.Context) ([]models.Peptide, error) {
	var out []models.Peptide
	if err := c.doRequest(ctx, http.MethodGet, "/peptides", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategories returns the category list.
func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.doRequest(ctx, http.MethodGet, "/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRetailers returns the retailer list.
func (c *Client) GetRetailers(ctx context.Context) ([]models.Retailer, error) {
	var out []models.Retailer
	if err := c.doRequest(ctx, http.MethodGet, "/retailers", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/admin/login", "", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

// AdminListPeptides returns every peptide, including unpublished ones.
func (c *Client) AdminListPeptides(ctx context.Context, token string) ([]models.Peptide, error) {
	var out []models.Peptide
	if err := c.doRequest(ctx, http.MethodGet, "/admin/peptides", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminGetPeptide returns one peptide.
func (c *Client) AdminGetPeptide(ctx context.Context, token, id string) (*models.Peptide, error) {
	var out models.Peptide
	if err := c.doRequest(ctx, http.MethodGet, "/admin/peptides/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminCreatePeptide creates a peptide.
func (c *Client) AdminCreatePeptide(ctx context.Context, token string, in *PeptideInput) (*models.Peptide, error) {
	var out models.Peptide
	if err := c.doRequest(ctx, http.MethodPost, "/admin/peptides", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUpdatePeptide replaces a peptide.
func (c *Client) AdminUpdatePeptide(ctx context.Context, token, id string, in *PeptideInput) (*models.Peptide, error) {
	var out models.Peptide
	if err := c.doRequest(ctx, http.MethodPut, "/admin/peptides/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminDeletePeptide deletes a peptide.
func (c *Client) AdminDeletePeptide(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/admin/peptides/"+url.PathEscape(id), token, nil, nil)
}

// AdminBulkCreatePeptides creates many peptides in one call.
func (c *Client) AdminBulkCreatePeptides(ctx context.Context, token string, in []PeptideInput) (*BulkResult, error) {
	body := struct {
		Peptides []PeptideInput `json:"peptides"`
	}{Peptides: in}
	var out BulkResult
	if err := c.doRequest(ctx, http.MethodPost, "/admin/peptides/bulk", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doRequest sends a JSON request and decodes the response into result.
// Non-2xx statuses become *APIError. Both bare payloads and {"data": ...}
// envelopes are accepted.
func (c *Client) doRequest(ctx context.Context, method, endpoint, token string, body, result any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.debug {
		ev := log.Debug().Str("method", method).Str("endpoint", c.baseURL+endpoint)
		if payload != nil && !strings.HasSuffix(endpoint, "/login") {
			ev = ev.RawJSON("request", payload)
		}
		ev.Msg("[PEPTIDE API] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Int("bytes", len(respBody)).
			Msg("[PEPTIDE API] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody)
	}
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	return decodeBody(respBody, result)
}

// decodeBody unmarshals either the bare payload or its "data" envelope.
func decodeBody(body []byte, result any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			if err := json.Unmarshal(envelope.Data, result); err == nil {
				return nil
			}
		}
	}
	if err := json.Unmarshal(trimmed, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
