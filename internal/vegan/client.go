// Package vegan checks ingredient names against an external "is it vegan"
// lookup service. Verdicts are cached, concurrent lookups of the same
// ingredient are collapsed, and transient failures are retried
package vegan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	larder "github.com/kode4food/larder"
	"github.com/kode4food/larder/pkg/log"
)

type (
	// Checker decides whether an ingredient is vegan
	Checker interface {
		IsVegan(ctx context.Context, ingredient string) (bool, error)
	}

	// Options configures an HTTPChecker
	Options struct {
		URL        string
		Timeout    time.Duration
		CacheSize  int
		MaxRetries int

		// RetryInterval is the first backoff delay; later ones grow
		// exponentially
		RetryInterval time.Duration
	}

	// HTTPChecker queries the lookup service over HTTP
	HTTPChecker struct {
		httpClient *http.Client
		baseURL    string
		maxRetries int
		cache      *verdictCache
		group      singleflight.Group
		interval   time.Duration
		deadline   time.Duration
	}
)

const (
	// NotVeganMessage is the client-facing rejection for a non-vegan
	// ingredient
	NotVeganMessage = "This ingredient is not vegan!"

	DefaultRetryInterval = 100 * time.Millisecond

	// maxLookupTime bounds a shared lookup, retries included
	maxLookupTime = 15 * time.Second

	veganField = "isVeganSafe"
)

var (
	ErrNotVegan           = errors.New("ingredient is not vegan")
	ErrEmptyIngredient    = errors.New("ingredient name empty")
	ErrHTTPError          = errors.New("vegan lookup returned HTTP error")
	ErrMalformedResponse  = errors.New("vegan lookup returned malformed response")
	ErrServiceUnavailable = errors.New("vegan lookup unavailable")
)

var _ Checker = (*HTTPChecker)(nil)

// NewHTTPChecker creates a checker for the lookup service at opts.URL
func NewHTTPChecker(opts Options) *HTTPChecker {
	return &HTTPChecker{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:    opts.URL,
		maxRetries: max(opts.MaxRetries, 0),
		cache:      newVerdictCache(opts.CacheSize),
		interval:   opts.RetryInterval,
		deadline:   lookupDeadline(opts),
	}
}

// Check returns ErrNotVegan if the ingredient is not vegan
func Check(ctx context.Context, c Checker, ingredient string) error {
	ok, err := c.IsVegan(ctx, ingredient)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotVegan
	}
	return nil
}

// Normalize reduces an ingredient name to its lookup key: lowercase with
// all whitespace removed
func Normalize(ingredient string) string {
	return strings.ToLower(strings.Join(strings.Fields(ingredient), ""))
}

// IsVegan looks the ingredient up, consulting the cache first
func (c *HTTPChecker) IsVegan(
	ctx context.Context, ingredient string,
) (bool, error) {
	key := Normalize(ingredient)
	if key == "" {
		return false, ErrEmptyIngredient
	}
	if vegan, ok := c.cache.get(key); ok {
		return vegan, nil
	}

	// Shared by every caller waiting on key, so detached from the first
	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), c.deadline,
		)
		defer cancel()

		vegan, err := c.lookup(lctx, key)
		if err != nil {
			return false, err
		}
		c.cache.put(key, vegan)
		return vegan, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (c *HTTPChecker) lookup(ctx context.Context, key string) (bool, error) {
	var vegan bool
	attempt := 0
	bo := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackoff(), uint64(c.maxRetries)), ctx,
	)
	err := backoff.Retry(func() error {
		attempt++
		var err error
		vegan, err = c.fetch(ctx, key)
		if err != nil && attempt <= c.maxRetries && isRetryable(err) {
			slog.Warn("Vegan lookup failed, retrying",
				log.Ingredient(key),
				slog.Int("attempt", attempt),
				log.Error(err))
		}
		return err
	}, bo)
	if err != nil && ctx.Err() != nil &&
		!errors.Is(err, ErrServiceUnavailable) {
		err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	if err != nil {
		slog.Error("Vegan lookup failed",
			log.Ingredient(key),
			slog.Int("attempts", attempt),
			log.Error(err))
		return false, err
	}
	return vegan, nil
}

func (c *HTTPChecker) fetch(ctx context.Context, key string) (bool, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false, backoff.Permanent(err)
	}
	q := u.Query()
	q.Set("ingredients", key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", larder.Name+"/"+larder.Version)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, backoff.Permanent(
				fmt.Errorf("%w: %w", ErrServiceUnavailable, err),
			)
		}
		return false, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	slog.Debug("Vegan lookup response",
		log.Ingredient(key),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: HTTP %d", ErrHTTPError, resp.StatusCode)
		if resp.StatusCode >= 500 ||
			resp.StatusCode == http.StatusTooManyRequests {
			return false, err
		}
		return false, backoff.Permanent(err)
	}

	field := gjson.GetBytes(body, veganField)
	if !field.Exists() || (field.Type != gjson.True &&
		field.Type != gjson.False) {
		return false, backoff.Permanent(fmt.Errorf("%w: missing %s",
			ErrMalformedResponse, veganField))
	}
	return field.Bool(), nil
}

func lookupDeadline(opts Options) time.Duration {
	if opts.Timeout <= 0 {
		return maxLookupTime
	}
	return min(opts.Timeout*time.Duration(max(opts.MaxRetries, 0)+1),
		maxLookupTime)
}

func isRetryable(err error) bool {
	var perm *backoff.PermanentError
	return !errors.As(err, &perm)
}

func (c *HTTPChecker) newBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = DefaultRetryInterval
	if c.interval > 0 {
		bo.InitialInterval = c.interval
	}
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 10 * time.Second
	return bo
}
