package storeapi

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

	"github.com/google/uuid"

	"github.com/five82/storefront/internal/model"
)

// Client talks to the storefront account/order API and the catalog API.
type Client struct {
	apiURL     *url.URL
	catalogURL *url.URL
	http       *http.Client
	userAgent  string
	newID      func() string
}

const (
	defaultAPIURL     = "http://127.0.0.1:3000"
	defaultCatalogURL = "https://fakestoreapi.com"
	defaultUserAgent  = "storefront/0.1"
	requestTimeout    = 10 * time.Second
	maxErrorBody      = 64 * 1024
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client for the given API and catalog base URLs. Empty
// values fall back to the defaults.
func NewClient(apiURL, catalogURL string, opts ...Option) (*Client, error) {
	api, err := parseBaseURL(apiURL, defaultAPIURL)
	if err != nil {
		return nil, err
	}
	catalog, err := parseBaseURL(catalogURL, defaultCatalogURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		apiURL:     api,
		catalogURL: catalog,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SignUp registers an account and returns the new session.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/users/signup", signUpRequest{Name: name, Email: email, Password: password})
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/users/signin", signInRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthResult, error) {
	if c == nil {
		return AuthResult{}, fmt.Errorf("client is nil")
	}
	var payload AuthResult
	err := c.do(ctx, request{method: http.MethodPost, base: c.apiURL, path: path, body: body, authPath: true}, &payload)
	if err != nil {
		return AuthResult{}, err
	}
	if payload.Status == statusError || strings.TrimSpace(payload.Token) == "" {
		return AuthResult{}, &APIError{
			Path:       path,
			StatusCode: http.StatusOK,
			Message:    payload.Message,
			Auth:       true,
		}
	}
	return payload, nil
}

// UpdateProfile changes the name and/or password of the signed-in user.
func (c *Client) UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (ProfileResult, error) {
	if c == nil {
		return ProfileResult{}, fmt.Errorf("client is nil")
	}
	var payload ProfileResult
	if err := c.do(ctx, request{method: http.MethodPost, base: c.apiURL, path: "/users/update", token: token, body: update}, &payload); err != nil {
		return ProfileResult{}, err
	}
	if payload.Status != "" && payload.Status != StatusOK {
		return ProfileResult{}, &APIError{Path: "/users/update", StatusCode: http.StatusOK, Message: payload.Message}
	}
	return payload, nil
}

// ListOrders returns every order of the signed-in user.
func (c *Client) ListOrders(ctx context.Context, token string) ([]model.Order, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload OrderListResponse
	if err := c.do(ctx, request{method: http.MethodGet, base: c.apiURL, path: "/orders/all", token: token}, &payload); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(payload.Orders))
	for _, rec := range payload.Orders {
		o, err := rec.Order()
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateOrderStatus sets the payment/delivery flags of an order.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, orderID int64, isPaid, isDelivered bool) (Ack, error) {
	if c == nil {
		return Ack{}, fmt.Errorf("client is nil")
	}
	body := updateStatusRequest{OrderID: orderID, IsPaid: boolInt(isPaid), IsDelivered: boolInt(isDelivered)}
	var payload Ack
	if err := c.do(ctx, request{method: http.MethodPost, base: c.apiURL, path: "/orders/updateorder", token: token, body: body}, &payload); err != nil {
		return Ack{}, err
	}
	return payload, nil
}

// CreateOrder places an order. idempotencyKey lets the server drop a
// duplicate submission of the same checkout.
func (c *Client) CreateOrder(ctx context.Context, token string, items []model.OrderItem, userEmail, idempotencyKey string) (CreatedOrder, error) {
	if c == nil {
		return CreatedOrder{}, fmt.Errorf("client is nil")
	}
	body := createOrderRequest{Items: items, UserEmail: userEmail}
	var payload CreatedOrder
	req := request{
		method: http.MethodPost,
		base:   c.apiURL,
		path:   "/orders/neworder",
		token:  token,
		body:   body,
		header: map[string]string{"Idempotency-Key": idempotencyKey},
	}
	if err := c.do(ctx, req, &payload); err != nil {
		return CreatedOrder{}, err
	}
	return payload, nil
}

// Categories lists catalog category names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []string
	if err := c.do(ctx, request{method: http.MethodGet, base: c.catalogURL, path: "/products/categories"}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ProductsByCategory lists the products of one category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("category required")
	}
	var payload []model.Product
	req := request{
		method:  http.MethodGet,
		base:    c.catalogURL,
		path:    "/products/category/" + category,
		rawPath: "/products/category/" + url.PathEscape(category),
	}
	if err := c.do(ctx, req, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Product fetches a single product.
func (c *Client) Product(ctx context.Context, id int64) (model.Product, error) {
	if c == nil {
		return model.Product{}, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return model.Product{}, fmt.Errorf("product id required")
	}
	var payload *model.Product
	path := "/products/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, request{method: http.MethodGet, base: c.catalogURL, path: path}, &payload); err != nil {
		return model.Product{}, err
	}
	if payload == nil {
		return model.Product{}, &APIError{Path: path, StatusCode: http.StatusNotFound, Message: "product not found"}
	}
	return *payload, nil
}

type request struct {
	method   string
	base     *url.URL
	path     string
	rawPath  string
	token    string
	body     any
	header   map[string]string
	authPath bool
}

func (c *Client) do(ctx context.Context, r request, dest any) error {
	reqURL := *r.base
	reqURL.Path = r.path
	reqURL.RawPath = r.rawPath

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", c.newID())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.header {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return newAPIError(r, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(r request, resp *http.Response) *APIError {
	apiErr := &APIError{Path: r.path, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Auth = true
	case http.StatusNotFound, http.StatusBadRequest:
		// sign-in answers unknown users and bad passwords this way
		apiErr.Auth = r.authPath && r.path == "/users/signin"
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Payload = payload
	for _, key := range []string{"message", "error"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}

func parseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
