package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"diabetes-care-backend/internal/platform/httpclient"
	"diabetes-care-backend/internal/ports/food"
)

var (
	ErrNotConfigured = errors.New("food api client not configured")
	ErrUpstream      = errors.New("food api upstream error")
)

// Config del cliente de la API de alimentos.
// BaseURL y APIKey normalmente vienen de FOOD_API_BASE_URL / FOOD_API_KEY.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Resolver implementa food.Resolver contra una API externa de nutrición.
// Si Fallback no es nil, un error de upstream cae a la base embebida en vez
// de romper el registro de la comida.
type Resolver struct {
	client       *httpclient.Client
	apiKey       string
	apiKeyHeader string
	fallback     food.Resolver
}

func NewResolver(cfg Config, fallback food.Resolver) (*Resolver, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	c, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		client:       c,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		fallback:     fallback,
	}, nil
}

func (r *Resolver) IsConfigured() bool {
	return r != nil && r.client != nil && r.client.BaseURL != ""
}

type foodPayload struct {
	Name           string  `json:"name"`
	Carbs          float64 `json:"carbs"`
	Protein        float64 `json:"protein"`
	Fat            float64 `json:"fat"`
	AbsorptionType string  `json:"absorption_type"`
	ServingAmount  float64 `json:"serving_amount"`
	ServingUnit    string  `json:"serving_unit"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
}

func (r *Resolver) Resolve(ctx context.Context, name string) (food.Details, error) {
	if !r.IsConfigured() {
		if r != nil && r.fallback != nil {
			return r.fallback.Resolve(ctx, name)
		}
		return food.Details{}, ErrNotConfigured
	}

	var out foodPayload
	err := r.client.DoJSON(ctx, http.MethodGet,
		"/v1/foods/"+url.PathEscape(strings.TrimSpace(name)),
		r.headers(), nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return food.Details{}, food.ErrNotFound
		}
		if r.fallback != nil {
			return r.fallback.Resolve(ctx, name)
		}
		return food.Details{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return toDetails(out), nil
}

func (r *Resolver) Search(ctx context.Context, query, category string) ([]food.Result, error) {
	if !r.IsConfigured() {
		if r != nil && r.fallback != nil {
			return r.fallback.Search(ctx, query, category)
		}
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	if strings.TrimSpace(category) != "" {
		q.Set("category", strings.TrimSpace(category))
	}

	var out []foodPayload
	err := r.client.DoJSON(ctx, http.MethodGet,
		"/v1/foods/search?"+q.Encode(),
		r.headers(), nil, &out)
	if err != nil {
		if r.fallback != nil {
			return r.fallback.Search(ctx, query, category)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	results := make([]food.Result, 0, len(out))
	for _, p := range out {
		results = append(results, food.Result{Name: p.Name, Details: toDetails(p)})
	}
	return results, nil
}

func (r *Resolver) headers() map[string]string {
	if r.apiKey == "" {
		return nil
	}
	return map[string]string{r.apiKeyHeader: r.apiKey}
}

func toDetails(p foodPayload) food.Details {
	return food.Details{
		Carbs:          p.Carbs,
		Protein:        p.Protein,
		Fat:            p.Fat,
		AbsorptionType: p.AbsorptionType,
		ServingAmount:  p.ServingAmount,
		ServingUnit:    p.ServingUnit,
		Category:       p.Category,
		Description:    p.Description,
	}
}
