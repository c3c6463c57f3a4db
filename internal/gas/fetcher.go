package gas

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/R3E-Network/light_api/internal/httputil"
	"github.com/R3E-Network/light_api/internal/logging"
	"github.com/R3E-Network/light_api/internal/metrics"
)

// gasNowFields are read from every provider response, in tier order.
var gasNowFields = [4]string{"data.slow", "data.standard", "data.fast", "data.rapid"}

// Fetcher requests gas quotes from the per-chain provider. It keeps no state
// between calls and is safe for concurrent use.
type Fetcher struct {
	client    *resty.Client
	endpoints map[uint64]string
	logger    *logging.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the resty client.
func WithHTTPClient(client *resty.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets a per-request timeout on the underlying client. Zero leaves
// cancellation to the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.SetTimeout(timeout)
		}
	}
}

// WithUserAgent sets the User-Agent sent to providers.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.client.SetHeader("User-Agent", ua)
		}
	}
}

// WithEndpoint overrides the provider URL for chainID.
func WithEndpoint(chainID uint64, url string) Option {
	return func(f *Fetcher) {
		f.endpoints[chainID] = url
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *logging.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using the default provider table.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: resty.NewWithClient(httputil.NewClient(httputil.DefaultClientConfig())).
			SetHeader("Accept", "application/json"),
		endpoints: make(map[uint64]string, len(defaultEndpoints)),
	}
	for id, url := range defaultEndpoints {
		f.endpoints[id] = url
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}
	return f
}

// Estimate fetches the current quote for chainID. It performs exactly one
// request; there is no retry and no caching.
func (f *Fetcher) Estimate(ctx context.Context, chainID uint64) (*GasEstimation, error) {
	url, ok := f.endpoints[chainID]
	if !ok {
		metrics.RecordGasFetch(chainID, "unsupported", 0)
		return nil, &UnsupportedChainError{ChainID: chainID}
	}

	start := time.Now()
	est, err := f.fetch(ctx, chainID, url)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordGasFetch(chainID, outcome, time.Since(start))

	if err != nil {
		f.logger.WithContext(ctx).WithError(err).WithField("chain_id", chainID).Warn("gas estimation failed")
		return nil, err
	}
	return est, nil
}

func (f *Fetcher) fetch(ctx context.Context, chainID uint64, url string) (*GasEstimation, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &RequestError{ChainID: chainID, URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &RequestError{
			ChainID:    chainID,
			URL:        url,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected response status %q", resp.Status()),
		}
	}

	data, err := parseGasNow(resp.Body())
	if err != nil {
		return nil, &RequestError{ChainID: chainID, URL: url, StatusCode: resp.StatusCode(), Err: err}
	}

	f.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"chain_id": chainID,
		"slow":     data.Slow,
		"standard": data.Standard,
		"fast":     data.Fast,
		"rapid":    data.Rapid,
	}).Debug("gas estimation fetched")

	return data.estimation(), nil
}

func parseGasNow(body []byte) (gasNowData, error) {
	if !gjson.ValidBytes(body) {
		return gasNowData{}, errors.New("response body is not valid JSON")
	}

	var values [4]uint64
	for i, res := range gjson.GetManyBytes(body, gasNowFields[:]...) {
		if !res.Exists() {
			return gasNowData{}, fmt.Errorf("missing field %s", gasNowFields[i])
		}
		if res.Type != gjson.Number {
			return gasNowData{}, fmt.Errorf("field %s is not a number", gasNowFields[i])
		}
		v, err := strconv.ParseUint(res.Raw, 10, 64)
		if err != nil {
			return gasNowData{}, fmt.Errorf("field %s: %w", gasNowFields[i], err)
		}
		values[i] = v
	}

	return gasNowData{
		Slow:     values[0],
		Standard: values[1],
		Fast:     values[2],
		Rapid:    values[3],
	}, nil
}

var (
	defaultFetcher     *Fetcher
	defaultFetcherOnce sync.Once
)

// EthereumGasEstimation fetches a quote for chainID with a shared default Fetcher.
func EthereumGasEstimation(ctx context.Context, chainID uint64) (*GasEstimation, error) {
	defaultFetcherOnce.Do(func() {
		defaultFetcher = NewFetcher()
	})
	return defaultFetcher.Estimate(ctx, chainID)
}
