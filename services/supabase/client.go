// Package supabase talks to the hosted backend: GoTrue for auth, PostgREST for records.
package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

type Client struct {
	baseURL string
	anonKey string
	http    *rest.Client
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Supabase.URL, "/"),
		anonKey: conf.Supabase.AnonKey,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.RemoteTimeout}},
	}
}

type request struct {
	method  rest.Method
	path    string
	query   map[string]string
	headers map[string]string
	token   string // user JWT; the anon key is used when empty
	body    interface{}
}

// send performs req and returns the raw response; non-2xx responses are returned, not errored.
func (c *Client) send(ctx context.Context, req request) (*rest.Response, error) {
	token := req.token
	if token == "" {
		token = c.anonKey
	}
	headers := map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + token,
		"Accept":        "application/json",
	}
	for k, v := range req.headers {
		headers[k] = v
	}

	r := rest.Request{
		Method:      req.method,
		BaseURL:     c.baseURL + req.path,
		Headers:     headers,
		QueryParams: req.query,
	}
	if req.body != nil {
		body, err := json.Marshal(req.body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		r.Body = body
		r.Headers["Content-Type"] = "application/json"
	}

	httpReq, err := rest.BuildRequestObject(r)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	httpRes, err := c.http.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, string(req.method)+" "+req.path)
		}
		return nil, errors.Wrap(err, string(req.method)+" "+req.path)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return nil, errors.Wrap(err, "reading "+req.path+" response")
	}
	return res, nil
}

// do sends req and decodes a 2xx JSON body into out (if not nil).
// A PostgREST error body is returned as a *gateway.RemoteError.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	res, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return decodeRemoteError(res)
	}
	if out == nil || strings.TrimSpace(res.Body) == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrapf(err, "decoding %s response", req.path)
	}
	return nil
}

func decodeRemoteError(res *rest.Response) error {
	rErr := &gateway.RemoteError{Status: res.StatusCode}
	if err := json.Unmarshal([]byte(res.Body), rErr); err != nil || rErr.Message == "" {
		rErr.Message = http.StatusText(res.StatusCode)
	}
	return rErr
}
