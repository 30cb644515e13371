package geoapify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"real-estate-system/internal/core/port"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

var ErrMissingAPIKey = errors.New("geoapify api key is not configured")

type Config struct {
	BaseURL        string
	APIKey         string
	Parallelism    int
	RandomDelay    time.Duration
	RequestTimeout time.Duration
}

// GeoapifyAdapter - клиент Geoapify на colly.
// Родительский коллектор держит общие лимиты, каждый запрос идет через свой клон.
type GeoapifyAdapter struct {
	collector *colly.Collector
	baseURL   string
	apiKey    string
}

func NewGeoapifyAdapter(cfg Config) (*GeoapifyAdapter, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("GeoapifyAdapter: invalid base url %q: %v", cfg.BaseURL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.AllowURLRevisit(),
	)
	// геометрии границ бывают большими
	c.MaxBodySize = 50 * 1024 * 1024

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		RandomDelay: cfg.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("GeoapifyAdapter: failed to set limit rule: %w", err)
	}
	if cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(cfg.RequestTimeout)
	}

	return &GeoapifyAdapter{
		collector: c,
		baseURL:   base.String(),
		apiKey:    cfg.APIKey,
	}, nil
}

// get выполняет GET и возвращает тело успешного ответа
func (a *GeoapifyAdapter) get(ctx context.Context, path string, query url.Values, logger port.LoggerPort) ([]byte, error) {
	if a.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query.Set("apiKey", a.apiKey)
	target := a.baseURL + path + "?" + query.Encode()

	collector := a.collector.Clone()
	collector.Context = ctx

	var body []byte
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
		logger.Debug("Making request to Geoapify", port.Fields{"path": path})
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		logger.Warn("Geoapify request failed", port.Fields{"path": path, "status": status, "error": err.Error()})
		fetchErr = fmt.Errorf("geoapify %s: status %d: %w", path, status, err)
	})

	if err := collector.Visit(target); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("geoapify %s: %w", path, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}
