package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshyorko/depclean/common"
	"github.com/sony/gobreaker"
)

const (
	statusBadRequest = 9001
	statusTransport  = 9002
	statusBreaker    = 9003
)

var (
	errServerSide = errors.New("server side failure")
)

type internalClient struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	tracing  bool
	critical bool
}

type Request struct {
	Url     string
	Headers map[string]string
	Query   url.Values
	Body    io.Reader
	Stream  io.Writer
}

type Response struct {
	Status    int
	Err       error
	Body      []byte
	RequestId string
	Elapsed   common.Duration
}

type Client interface {
	Endpoint() string
	NewRequest(string) *Request
	Get(ctx context.Context, request *Request) *Response
	Post(ctx context.Context, request *Request) *Response
	Put(ctx context.Context, request *Request) *Response
	Timeout() time.Duration
	WithTimeout(time.Duration) Client
	WithTracing() Client
	Uncritical() Client
}

func EnsureHttps(endpoint string) (string, error) {
	nice := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	parsed, err := url.Parse(nice)
	if err != nil {
		return "", err
	}
	if parsed.Hostname() == "127.0.0.1" || parsed.Hostname() == "localhost" {
		return nice, nil
	}
	if parsed.Scheme != "https" {
		return "", fmt.Errorf("Endpoint '%s' must start with https:// prefix.", nice)
	}
	return nice, nil
}

func NewUnsafeClient(endpoint string) (Client, error) {
	return newClient(strings.TrimRight(endpoint, "/")), nil
}

func NewClient(endpoint string) (Client, error) {
	https, err := EnsureHttps(endpoint)
	if err != nil {
		return nil, err
	}
	return newClient(https), nil
}

func newClient(endpoint string) *internalClient {
	return &internalClient{
		endpoint: endpoint,
		client:   &http.Client{},
		breaker:  newBreaker(endpoint),
		tracing:  false,
		critical: true,
	}
}

// newBreaker trips after a mostly failing run of requests, so a dead
// endpoint is not hammered page after page.
func newBreaker(endpoint string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			common.Debug("Circuit breaker for %s went from %v to %v.", name, from, to)
		},
	})
}

func (it *internalClient) Uncritical() Client {
	it.critical = false
	return it
}

func (it *internalClient) Timeout() time.Duration {
	return it.timeout
}

func (it *internalClient) WithTimeout(timeout time.Duration) Client {
	return &internalClient{
		endpoint: it.endpoint,
		client:   &http.Client{Timeout: timeout},
		breaker:  it.breaker,
		timeout:  timeout,
		tracing:  it.tracing,
		critical: it.critical,
	}
}

func (it *internalClient) WithTracing() Client {
	return &internalClient{
		endpoint: it.endpoint,
		client:   it.client,
		breaker:  it.breaker,
		timeout:  it.timeout,
		tracing:  true,
		critical: it.critical,
	}
}

func (it *internalClient) Endpoint() string {
	return it.endpoint
}

func (it *internalClient) does(ctx context.Context, method string, request *Request) *Response {
	stopwatch := common.Stopwatch("stopwatch")
	response := new(Response)
	response.RequestId = uuid.NewString()
	link := it.Endpoint() + request.Url
	if len(request.Query) > 0 {
		link = link + "?" + request.Query.Encode()
	}
	common.Trace("Doing %s %s [%s]", method, link, response.RequestId)
	defer func() {
		response.Elapsed = stopwatch.Elapsed()
		common.Trace("%s %s took %s", method, link, response.Elapsed)
	}()
	httpRequest, err := http.NewRequestWithContext(ctx, method, link, request.Body)
	if err != nil {
		response.Status = statusBadRequest
		response.Err = err
		return response
	}
	httpRequest.Header.Add("User-Agent", common.UserAgent())
	httpRequest.Header.Add("X-Request-Id", response.RequestId)
	if it.timeout > 0 {
		httpRequest.Header.Add("Request-Timeout", fmt.Sprintf("%d", int(it.timeout.Seconds())))
	}
	for name, value := range request.Headers {
		httpRequest.Header.Add(name, value)
	}
	_, err = it.breaker.Execute(func() (interface{}, error) {
		return nil, it.roundtrip(httpRequest, request, response)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		response.Status = statusBreaker
		response.Err = fmt.Errorf("%s is not available right now: %w", it.endpoint, err)
	case errors.Is(err, errServerSide):
		response.Err = nil
	}
	if common.DebugFlag() {
		body := "ignore"
		if response.Status > 399 {
			body = excerpt(response.Body)
		}
		common.Debug("%v %v %v => %v (%v)", response.RequestId, method, link, response.Status, body)
	}
	return response
}

// roundtrip fills the response and reports transport failures and 5xx
// statuses to the breaker.
func (it *internalClient) roundtrip(httpRequest *http.Request, request *Request, response *Response) error {
	httpResponse, err := it.client.Do(httpRequest)
	if err != nil {
		if it.critical {
			common.Error("http.Do", err)
		} else {
			common.Uncritical("http.Do", err)
		}
		response.Status = statusTransport
		response.Err = err
		return err
	}
	defer httpResponse.Body.Close()
	if it.tracing {
		common.Trace("Response %d headers:", httpResponse.StatusCode)
		keys := make([]string, 0, len(httpResponse.Header))
		for key := range httpResponse.Header {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			common.Trace("> %s: %q", key, httpResponse.Header[key])
		}
	}
	response.Status = httpResponse.StatusCode
	if request.Stream != nil && response.Status < 300 {
		_, response.Err = io.Copy(request.Stream, httpResponse.Body)
	} else {
		response.Body, response.Err = io.ReadAll(httpResponse.Body)
	}
	if response.Err != nil {
		return response.Err
	}
	if response.Status >= 500 {
		return errServerSide
	}
	return nil
}

func (it *internalClient) NewRequest(link string) *Request {
	return &Request{
		Url:     link,
		Headers: make(map[string]string),
		Query:   make(url.Values),
	}
}

func (it *internalClient) Get(ctx context.Context, request *Request) *Response {
	return it.does(ctx, http.MethodGet, request)
}

func (it *internalClient) Post(ctx context.Context, request *Request) *Response {
	return it.does(ctx, http.MethodPost, request)
}

func (it *internalClient) Put(ctx context.Context, request *Request) *Response {
	return it.does(ctx, http.MethodPut, request)
}

func excerpt(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
