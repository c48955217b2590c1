package ncu

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"ncucourse/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ncucourse.lib.scrapers.ncu")

const (
	DefaultBaseUrl   = "https://cis.ncu.edu.tw"
	DefaultEntryPath = "/Course/main/query/byClass"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

type ClientOptions struct {
	BaseUrl   string
	EntryPath string
	UserAgent string
	Timeout   time.Duration
	// RetryCount is the number of retries after a failed request.
	RetryCount int
	// MinDelay and MaxDelay bound the random pause taken before every
	// request that is not served from the cache.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Cache is optional.
	Cache *PageCache
	// Instrument is optional, see restyutil.InstrumentClient.
	Instrument restyutil.InstrumentOutput
	// DisableCloudflareBypass leaves the default transport untouched.
	DisableCloudflareBypass bool
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	entryPath string
	minDelay  time.Duration
	maxDelay  time.Duration
	cache     *PageCache
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.EntryPath == "" {
		opts.EntryPath = DefaultEntryPath
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 20
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	if !opts.DisableCloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept-language", "zh-TW,zh;q=0.9")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(time.Second)
	client.SetRetryMaxWaitTime(time.Second * 10)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= http.StatusInternalServerError
	})

	restyutil.InstrumentClient(client, tracer, opts.Instrument)

	return &Client{
		BaseUrl:   baseUrl,
		Http:      client,
		entryPath: opts.EntryPath,
		minDelay:  opts.MinDelay,
		maxDelay:  opts.MaxDelay,
		cache:     opts.Cache,
	}, nil
}

func (c *Client) politenessDelay() time.Duration {
	if c.maxDelay <= 0 {
		return 0
	}
	spread := c.maxDelay - c.minDelay
	if spread <= 0 {
		return c.minDelay
	}
	return c.minDelay + rand.N(spread)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// get fetches a page, serving it from the cache when possible.
func (c *Client) get(ctx context.Context, link string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "get")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, link)
		if err == nil {
			span.AddEvent("cache hit")
			return cached, nil
		}
		if err != ErrPageNotCached {
			span.RecordError(err)
		}
	}

	err := sleep(ctx, c.politenessDelay())
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		err = fmt.Errorf("fetch %s: unexpected status %d", link, res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body := res.Body()
	if c.cache != nil {
		err = c.cache.Set(ctx, link, body)
		if err != nil {
			span.RecordError(err)
		}
	}
	return body, nil
}
