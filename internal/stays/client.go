package stays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/store"
)

// ErrUpstream marks every failure that originates in the booking API.
var ErrUpstream = errors.New("booking api unavailable")

const (
	bookingsPath = "/external/v1/booking/reservations"
	listingsPath = "/external/v1/content/listings"

	// Reservations whose stay touches the window, not only those starting in it.
	dateTypeIncluded = "included"
)

// Client is a paginated reader of the upstream booking API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	pageSize     int
	maxRetries   int
	http         *http.Client
	limiter      *rate.Limiter
	backoff      func(attempt int) time.Duration
}

// NewClient builds a client from the stays configuration.
func NewClient(cfg *config.StaysConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		pageSize:     cfg.PageSize,
		maxRetries:   cfg.MaxRetries,
		http: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

// FetchBookings returns every reservation whose stay intersects [from, to].
func (c *Client) FetchBookings(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error) {
	query := url.Values{}
	query.Set("from", from.String())
	query.Set("to", to.String())
	query.Set("dateType", dateTypeIncluded)

	var all []store.ApiBooking
	err := c.paginate(ctx, bookingsPath, query, func(body []byte) (int, error) {
		var page []store.ApiBooking
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, fmt.Errorf("failed to unmarshal bookings page: %w", err)
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Fetched %d bookings for %s..%s", len(all), from, to)
	return all, nil
}

// FetchListings returns every listing of the account.
func (c *Client) FetchListings(ctx context.Context) ([]store.ApiListing, error) {
	var all []store.ApiListing
	err := c.paginate(ctx, listingsPath, url.Values{}, func(body []byte) (int, error) {
		var page []store.ApiListing
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, fmt.Errorf("failed to unmarshal listings page: %w", err)
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Fetched %d listings", len(all))
	return all, nil
}

// paginate walks skip/limit pages until a short page is returned. decode
// reports how many items the page held.
func (c *Client) paginate(ctx context.Context, path string, query url.Values, decode func([]byte) (int, error)) error {
	limit := c.pageSize
	if limit <= 0 {
		limit = 20
	}
	for skip := 0; ; skip += limit {
		query.Set("skip", strconv.Itoa(skip))
		query.Set("limit", strconv.Itoa(limit))

		body, err := c.getWithRetry(ctx, path, query)
		if err != nil {
			return err
		}
		n, err := decode(body)
		if err != nil {
			return errors.Mark(err, ErrUpstream)
		}
		if n < limit {
			return nil
		}
	}
}

func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			log.Printf("Retrying %s (attempt %d/%d) after %v...", path, attempt+1, attempts, wait)
			select {
			case <-ctx.Done():
				return nil, errors.Mark(errors.Wrap(ctx.Err(), "booking api retry aborted"), ErrUpstream)
			case <-time.After(wait):
			}
		}

		body, retry, err := c.get(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
		log.Printf("Attempt %d for %s failed: %v", attempt+1, path, err)
	}
	return nil, errors.Mark(errors.Wrapf(lastErr, "GET %s", path), ErrUpstream)
}

// get performs one request and reports whether a failure is worth retrying.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, errors.Newf("received status code %d", resp.StatusCode)
	}
	return body, false, nil
}
