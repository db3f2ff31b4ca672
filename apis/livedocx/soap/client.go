package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
)

const DefaultNamespace = "http://tempuri.org/"

// Client sends SOAP 1.1 document/literal calls to one endpoint.
// The remote keeps login state in a session cookie, so each Client
// should own its http.Client (and cookie jar). See NewHTTPClient
type Client struct {
	*http.Client // [Embedded]
	Endpoint     string
	Namespace    string
	Logger       *zap.SugaredLogger
}

// NewHTTPClient returns an http.Client with a private cookie jar
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) // error is always nil without PublicSuffixList
	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}
}

func NewClient(endpoint string, namespace string, httpClient *http.Client, logger *zap.SugaredLogger) *Client {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		Client:    httpClient,
		Endpoint:  endpoint,
		Namespace: namespace,
		Logger:    logger,
	}
}

// Call invokes operation with params and decodes the body content into result.
// params and result may be nil
func (c *Client) Call(ctx context.Context, operation string, params any, result any) error {
	var reqBuf bytes.Buffer
	reqBuf.WriteString(xml.Header)
	if err := xml.NewEncoder(&reqBuf).Encode(newRequestEnvelope(c.Namespace, operation, params)); err != nil {
		return fmt.Errorf("soap: encode %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &reqBuf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", `"`+c.Namespace+operation+`"`)

	started := time.Now()
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.Logger.Warnw("closing soap response body", "operation", operation, "error", closeErr)
		}
	}()
	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	c.Logger.Debugw("soap call",
		"operation", operation,
		"status", res.StatusCode,
		"bytes", len(resBytes),
		"elapsed", time.Since(started),
	)

	var env responseEnvelope
	if err = xml.Unmarshal(resBytes, &env); err != nil {
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return &HTTPError{StatusCode: res.StatusCode, Status: res.Status}
		}
		return fmt.Errorf("soap: decode %s response: %w", operation, err)
	}
	// ASMX answers faults with 500, but some proxies rewrite the status
	if env.Body.Fault != nil {
		return env.Body.Fault
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &HTTPError{StatusCode: res.StatusCode, Status: res.Status}
	}
	if result == nil {
		return nil
	}
	if err = xml.Unmarshal(env.Body.Content, result); err != nil {
		return fmt.Errorf("soap: decode %s result: %w", operation, err)
	}
	return nil
}
