package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/normalize"
)

// DefaultBaseURL is the hosted mock REST API backing the catalog.
const DefaultBaseURL = "https://6852821e0594059b23cdd834.mockapi.io"

// DefaultResource is the collection name on the store.
const DefaultResource = "Food"

var (
	ErrInvalidResponse = errors.New("invalid response body")
	ErrEmptyID         = errors.New("food id is required")
	ErrUnavailable     = errors.New("food store unavailable")
)

// StatusError reports a non-success status returned by the store.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code: %d", e.Method, e.URL, e.StatusCode)
}

// IsStoreFailure reports whether err came from talking to the store, as
// opposed to a local input error.
func IsStoreFailure(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrInvalidResponse)
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// FoodRepository defines access to the Remote Food Store.
// Implementations perform no retries and no error translation.
type FoodRepository interface {
	List(ctx context.Context) ([]models.Food, error)
	Search(ctx context.Context, query string) ([]models.Food, error)
	Create(ctx context.Context, in models.FoodInput) (models.Food, error)
	Update(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error)
	Delete(ctx context.Context, id string) error
}

// Options configures HTTPFoodRepository.
type Options struct {
	BaseURL  string
	Resource string
	Timeout  time.Duration
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Normalizer        *normalize.Normalizer
	Logger            *slog.Logger
}

// HTTPFoodRepository implements FoodRepository over the store's REST contract.
type HTTPFoodRepository struct {
	baseURL    string
	resource   string
	client     *http.Client
	limiter    *rate.Limiter
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

// NewHTTPFoodRepository creates a new store client
func NewHTTPFoodRepository(opts Options) *HTTPFoodRepository {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Resource == "" {
		opts.Resource = DefaultResource
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalize.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPFoodRepository{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		resource:   strings.Trim(opts.Resource, "/"),
		client:     client,
		limiter:    rate.NewLimiter(limit, burst),
		normalizer: normalizer,
		logger:     logger,
	}
}

// List returns every record in the order the store sent them.
func (r *HTTPFoodRepository) List(ctx context.Context) ([]models.Food, error) {
	body, err := r.do(ctx, http.MethodGet, r.collectionURL(nil), nil)
	if err != nil {
		return nil, err
	}
	return r.decodeList(body), nil
}

// Search returns the records the store matches by name. An empty query is
// still sent; the store treats it like List.
func (r *HTTPFoodRepository) Search(ctx context.Context, query string) ([]models.Food, error) {
	body, err := r.do(ctx, http.MethodGet, r.collectionURL(url.Values{"name": {query}}), nil)
	if err != nil {
		return nil, err
	}
	return r.decodeList(body), nil
}

// Create sends a write-shaped record and returns the created food.
func (r *HTTPFoodRepository) Create(ctx context.Context, in models.FoodInput) (models.Food, error) {
	body, err := r.do(ctx, http.MethodPost, r.collectionURL(nil), models.NewCreatePayload(in))
	if err != nil {
		return models.Food{}, err
	}
	return r.decodeOne(body)
}

// Update sends only the fields present in patch and returns the updated food.
func (r *HTTPFoodRepository) Update(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error) {
	if id == "" {
		return models.Food{}, ErrEmptyID
	}
	body, err := r.do(ctx, http.MethodPut, r.itemURL(id), models.NewUpdatePayload(patch))
	if err != nil {
		return models.Food{}, err
	}
	return r.decodeOne(body)
}

// Delete removes a record by identifier.
func (r *HTTPFoodRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	_, err := r.do(ctx, http.MethodDelete, r.itemURL(id), nil)
	return err
}

func (r *HTTPFoodRepository) collectionURL(query url.Values) string {
	u := r.baseURL + "/" + r.resource
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (r *HTTPFoodRepository) itemURL(id string) string {
	return r.baseURL + "/" + r.resource + "/" + url.PathEscape(id)
}

func (r *HTTPFoodRepository) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, target, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: failed to read response: %w", method, target, ErrUnavailable, err)
	}

	r.logger.Debug("store request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
	}
	return body, nil
}

// decodeList treats any non-array body as an empty list.
func (r *HTTPFoodRepository) decodeList(body []byte) []models.Food {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		r.logger.Warn("store returned a non-list body", "type", parsed.Type.String())
		return []models.Food{}
	}

	items := parsed.Array()
	raws := make([]map[string]any, 0, len(items))
	for _, item := range items {
		raws = append(raws, rawRecord(item))
	}
	return r.normalizer.Foods(raws)
}

func (r *HTTPFoodRepository) decodeOne(body []byte) (models.Food, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return models.Food{}, fmt.Errorf("%w: expected an object", ErrInvalidResponse)
	}
	return r.normalizer.Food(rawRecord(parsed)), nil
}

// rawRecord converts a JSON value into the untyped record the normalizer
// accepts. Non-object elements become empty records.
func rawRecord(v gjson.Result) map[string]any {
	if m, ok := v.Value().(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func excerpt(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut]
	}
	return s
}
