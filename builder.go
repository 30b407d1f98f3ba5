package mockwire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// responseBuilder normalizes a resolved payload into a transport-level
// *http.Response, applying delay, fault injection and header merging.
type responseBuilder struct {
	logger *util.Logger
}

// wait suspends for the simulated latency, unwinding early when the
// request is cancelled. Independent concurrent requests delay
// independently.
func (b *responseBuilder) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// assemble builds the final response. A payload that is already an
// *http.Response is returned untouched: no header or status merging
// applies, the handler has full control.
func (b *responseBuilder) assemble(def *Definition, cfg Config, req *http.Request, resolved interface{}) (*http.Response, error) {
	if resp, ok := resolved.(*http.Response); ok {
		if resp.Request == nil {
			resp.Request = req
		}
		return resp, nil
	}

	reply := asReply(resolved)

	status := reply.Status
	if status == 0 {
		status = def.Status
	}
	if status == 0 {
		status = http.StatusOK
	}

	merged := util.MergeHeaders(cfg.DefaultHeaders, def.Headers, reply.Headers)
	header := make(http.Header, len(merged))
	for k, v := range merged {
		header.Set(k, v)
	}

	body, length, contentType, err := encodeBody(reply.Data)
	if err != nil {
		return nil, err
	}
	if contentType != "" && header.Get("Content-Type") == "" {
		header.Set("Content-Type", contentType)
	}

	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          body,
		ContentLength: length,
		Request:       req,
	}, nil
}

// asReply normalizes the resolved payload into a Reply. Only typed
// Reply values carry status/header overrides; everything else is pure
// data.
func asReply(resolved interface{}) *Reply {
	switch v := resolved.(type) {
	case *Reply:
		if v == nil {
			return &Reply{}
		}
		return v
	case Reply:
		return &v
	default:
		return &Reply{Data: resolved}
	}
}

// encodeBody turns a payload into a response body. Raw transport body
// types pass through unchanged; everything else is JSON-serialized.
func encodeBody(data interface{}) (io.ReadCloser, int64, string, error) {
	switch v := data.(type) {
	case nil:
		return http.NoBody, 0, "", nil
	case string:
		return io.NopCloser(bytes.NewReader([]byte(v))), int64(len(v)), "", nil
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), int64(len(v)), "", nil
	case url.Values:
		encoded := v.Encode()
		return io.NopCloser(bytes.NewReader([]byte(encoded))), int64(len(encoded)), "application/x-www-form-urlencoded", nil
	case io.ReadCloser:
		return v, -1, "", nil
	case io.Reader:
		return io.NopCloser(v), -1, "", nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, 0, "", util.NewValidationError("response body is not JSON-serializable", fmt.Sprintf("%T", v))
		}
		return io.NopCloser(bytes.NewReader(encoded)), int64(len(encoded)), "application/json", nil
	}
}
