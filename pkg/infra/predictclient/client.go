// Package predictclient calls the prediction API the way the demo UI does.
package predictclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/valyala/fastjson"
)

var ErrEmptyText = errors.New("text is required")

// APIError is a non-200 answer from the prediction API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction api returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	http     httpx.Client
	endpoint *url.URL
	parsers  fastjson.ParserPool
}

// New validates endpoint, the full URL of the predict route.
func New(endpoint string, http httpx.Client) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, model.NewConfigurationErrorf("url", "%v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, model.NewConfigurationErrorf("url", "%q is not an absolute http url", endpoint)
	}
	return &Client{http: http, endpoint: u}, nil
}

// Predict sends text as the data query parameter and returns the label.
func (c *Client) Predict(ctx context.Context, text string) (model.Label, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyText
	}
	u := *c.endpoint
	q := u.Query()
	q.Set("data", text)
	u.RawQuery = q.Encode()

	resp, err := c.http.Get(ctx, u.String())
	if err != nil {
		return 0, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(resp.Body)
	if resp.StatusCode != 200 {
		return 0, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(v, err, resp.Body)}
	}
	if err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	pred := v.Get("prediction")
	if pred == nil {
		return 0, errors.New("decode prediction: missing prediction field")
	}
	n, err := pred.Int()
	if err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	return model.Label(n), nil
}

func errorMessage(v *fastjson.Value, parseErr error, raw []byte) string {
	if parseErr == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if b := v.GetStringBytes(key); b != nil {
				return string(b)
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
