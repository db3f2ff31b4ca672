package livedocx

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/apis/livedocx/soap"
)

// Client is a mail-merge session handle with local staging of field and block values.
// Not safe for concurrent use. Independent Clients do not share any state
type Client struct {
	svc    Service
	logger *zap.SugaredLogger

	fieldValues map[string]string
	blockValues map[string][]map[string]string
}

type options struct {
	logger     *zap.SugaredLogger
	httpClient *http.Client
}

type Option func(*options)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient is used by Dial and Resolve. The client should have its own cookie jar
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	return o
}

// NewClient wraps any Service implementation
func NewClient(svc Service, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		svc:         svc,
		logger:      o.logger,
		fieldValues: make(map[string]string),
		blockValues: make(map[string][]map[string]string),
	}
}

// Resolve fills conf.Endpoint and conf.Namespace from the WSDL unless Endpoint is set.
// Clients dialed with a resolved conf skip discovery
func Resolve(ctx context.Context, conf *Conf, opts ...Option) error {
	if conf.Endpoint != "" {
		return nil
	}
	o := buildOptions(opts)
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = soap.NewHTTPClient(conf.Timeout.Duration)
	}
	desc, err := soap.Discover(ctx, httpClient, conf.WSDLURL())
	if err != nil {
		return err
	}
	conf.Endpoint = desc.Endpoint
	if conf.Namespace == "" {
		conf.Namespace = desc.Namespace
	}
	o.logger.Debugw("livedocx service discovered", "endpoint", conf.Endpoint, "namespace", conf.Namespace)
	return nil
}

// Dial connects to the service described by conf.
// Unless conf.Endpoint is set, the WSDL is fetched to resolve the endpoint;
// its transport errors are returned as-is. conf is not modified
func Dial(ctx context.Context, conf *Conf, opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = soap.NewHTTPClient(conf.Timeout.Duration)
	}
	resolved := *conf
	if err := Resolve(ctx, &resolved, WithLogger(o.logger), WithHTTPClient(httpClient)); err != nil {
		return nil, err
	}
	transport := soap.NewClient(resolved.Endpoint, resolved.Namespace, httpClient, o.logger.Named("soap"))
	return NewClient(transport, WithLogger(o.logger)), nil
}

// Service returns the underlying remote service
func (c *Client) Service() Service {
	return c.svc
}
