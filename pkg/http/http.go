// Package http is the outbound client the storefront package talks to the
// backend through. Every request is a single attempt; callers decide what
// a failure means.
//
//	resp, err := http.Post(base+"/api/order/status").
//	    Bearer(token).
//	    Body(map[string]any{"orderId": id, "status": "packing"}).
//	    WithContext(ctx).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	gohttp "net/http"
	"time"
)

// maxResponse caps how much of a backend reply is read.
const maxResponse = 8 << 20

var defaultTransport gohttp.RoundTripper = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient carries every outgoing request. Tests swap its Transport
// and put it back with ResetTransport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() { DefaultClient.Transport = defaultTransport }

// ErrResponseTooLarge is returned when a reply exceeds 8 MiB.
var ErrResponseTooLarge = errors.New("http: response too large")

// File is one file part of a multipart form.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Request is built with chained setters and sent once.
type Request struct {
	method  string
	url     string
	header  gohttp.Header
	json    any
	fields  [][2]string
	files   []File
	timeout time.Duration
	ctx     context.Context
}

func Get(target string) *Request    { return build(gohttp.MethodGet, target) }
func Post(target string) *Request   { return build(gohttp.MethodPost, target) }
func Delete(target string) *Request { return build(gohttp.MethodDelete, target) }

func build(method, target string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	return &Request{method: method, url: target, header: h, timeout: 30 * time.Second, ctx: context.Background()}
}

func (r *Request) Header(key, value string) *Request {
	r.header.Set(key, value)
	return r
}

// Bearer sets Authorization: Bearer <token>. An empty token is ignored.
func (r *Request) Bearer(token string) *Request {
	if token != "" {
		r.header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Body sends v as JSON. It is ignored once Field or Attach is used.
func (r *Request) Body(v any) *Request {
	r.json = v
	return r
}

// Field adds a form field and switches the request to multipart/form-data.
func (r *Request) Field(name, value string) *Request {
	r.fields = append(r.fields, [2]string{name, value})
	return r
}

// Attach adds a file part and switches the request to multipart/form-data.
func (r *Request) Attach(f File) *Request {
	r.files = append(r.files, f)
	return r
}

func (r *Request) Timeout(d time.Duration) *Request {
	if d > 0 {
		r.timeout = d
	}
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// Send executes the request. A non-nil error means no usable response
// arrived; HTTP error statuses come back as a Response.
func (r *Request) Send() (*Response, error) {
	body, contentType, err := r.encode()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header = r.header.Clone()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse+1))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	if len(raw) > maxResponse {
		return nil, fmt.Errorf("%w: %s %s", ErrResponseTooLarge, r.method, r.url)
	}
	return &Response{StatusCode: resp.StatusCode, Raw: raw}, nil
}

func (r *Request) encode() (io.Reader, string, error) {
	if len(r.fields) > 0 || len(r.files) > 0 {
		return r.multipart()
	}
	if r.json == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.json)
	if err != nil {
		return nil, "", fmt.Errorf("http: encode body: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}

func (r *Request) multipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range r.fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("http: field %s: %w", f[0], err)
		}
	}
	for _, f := range r.files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err == nil {
			_, err = io.Copy(part, f.Content)
		}
		if err != nil {
			return nil, "", fmt.Errorf("http: file %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("http: close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// Response is a fully read reply.
type Response struct {
	StatusCode int
	Raw        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Empty reports a body with no non-space content.
func (r *Response) Empty() bool { return len(bytes.TrimSpace(r.Raw)) == 0 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}
