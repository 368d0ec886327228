// Package artapi is the REST client of the remote art service: products,
// authentication, bulk image upload and product creation.
// Calls are made once; failures are returned to the caller and never retried.
package artapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production art service
const DefaultBaseURL = "https://art-case-backend.vercel.app/api"

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// APIError is a non-2xx answer from the art service.
// Message is the service's own message and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("art api: %d %s", e.StatusCode, msg)
}

// APIMessage returns the message sent by the service
func (e *APIError) APIMessage() string {
	return e.Message
}

// Unwrap maps the status to a domain error so callers can use errors.Is
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return shared.ErrNotFound
	case http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case http.StatusForbidden:
		return shared.ErrForbidden
	default:
		return shared.ErrUpstream
	}
}

// Upload is one image file sent to the bulk upload endpoint
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// NewProduct is the payload of a product creation
type NewProduct struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string
}

// Config configures the client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the art service
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *telemetry.StorefrontMetrics
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMetrics records latency and failures of every call
func WithMetrics(m *telemetry.StorefrontMetrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts returns the products matching filter
func (c *Client) ListProducts(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Featured {
		query.Set("featured", "true")
	}

	var raw json.RawMessage
	if err := c.do(ctx, "list_products", request{method: http.MethodGet, path: "/products", query: query}, &raw); err != nil {
		return nil, err
	}
	return decodeProducts(raw)
}

// GetProduct returns one product; an unknown id yields an error matching shared.ErrNotFound
func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, "get_product", request{method: http.MethodGet, path: "/products/" + url.PathEscape(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (session.UserSession, error) {
	body := map[string]string{"email": email, "password": password}
	var s session.UserSession
	err := c.do(ctx, "login", request{method: http.MethodPost, path: "/auth/login", json: body}, &s)
	return s, err
}

// Register creates an account and returns its session
func (c *Client) Register(ctx context.Context, name, email, password string) (session.UserSession, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var s session.UserSession
	err := c.do(ctx, "register", request{method: http.MethodPost, path: "/auth/register", json: body}, &s)
	return s, err
}

// UploadImages sends every file in one multipart request under the "images"
// field and returns the hosted URLs in the same order.
func (c *Client) UploadImages(ctx context.Context, token string, files []Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No images to upload")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreatePart(imagePartHeader(f))
		if err != nil {
			return nil, fmt.Errorf("creating multipart part: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var resp struct {
		ImageURLs []string `json:"imageUrls"`
	}
	req := request{
		method:      http.MethodPost,
		path:        "/upload/bulk",
		token:       token,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}
	if err := c.do(ctx, "upload_images", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.ImageURLs) != len(files) {
		return nil, &APIError{
			StatusCode: http.StatusBadGateway,
			Message:    fmt.Sprintf("uploaded %d images but received %d urls", len(files), len(resp.ImageURLs)),
		}
	}
	return resp.ImageURLs, nil
}

// CreateProduct publishes a product
func (c *Client) CreateProduct(ctx context.Context, token string, p NewProduct) error {
	body := struct {
		Title       string      `json:"title"`
		Price       json.Number `json:"price"`
		Description string      `json:"description"`
		Category    string      `json:"category"`
		Image       string      `json:"image"`
	}{
		Title:       p.Title,
		Price:       json.Number(p.Price.String()),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	return c.do(ctx, "create_product", request{method: http.MethodPost, path: "/products", token: token, json: body}, nil)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	json        any
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, op string, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	body := r.body
	contentType := r.contentType
	if r.json != nil {
		data, err := json.Marshal(r.json)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamCall(ctx, op, 0, time.Since(start), true)
		c.logger.Warn("Art API request failed", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("art api %s: %w", op, errors.Join(shared.ErrUpstream, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	failed := err != nil || resp.StatusCode >= 300
	c.metrics.RecordUpstreamCall(ctx, op, resp.StatusCode, time.Since(start), failed)
	if err != nil {
		return fmt.Errorf("reading art api response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Debug("Art API returned an error",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding art api %s response: %w", op, err)
	}
	return nil
}

// errorMessage extracts {"message": ...} from an error body
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return ""
}

// decodeProducts accepts a bare array or an object wrapping it under "products"
func decodeProducts(raw json.RawMessage) ([]catalog.Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []catalog.Product{}, nil
	}

	var products []catalog.Product
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, fmt.Errorf("decoding products: %w", err)
		}
		return products, nil
	}

	var wrapped struct {
		Products []catalog.Product `json:"products"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	if wrapped.Products == nil {
		return []catalog.Product{}, nil
	}
	return wrapped.Products, nil
}

func imagePartHeader(f Upload) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, escapeQuotes(f.Filename)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
