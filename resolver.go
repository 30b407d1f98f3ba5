package mockwire

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// responseResolver turns a winning definition's response source into a
// concrete value: the literal, the producer function's result, the Go
// handler's result, or the JavaScript handler's result. Errors from
// handlers propagate unwrapped so the transport layer fails the call
// the way a real network failure would.
type responseResolver struct {
	logger *util.Logger
}

// resolve computes the response payload for a matched request.
func (r *responseResolver) resolve(def *Definition, ctx *RequestContext) (interface{}, error) {
	switch {
	case def.Handler != nil:
		return def.Handler(ctx)
	case def.Script != "":
		return r.runScript(def, ctx)
	case def.ResponseFunc != nil:
		return def.ResponseFunc()
	default:
		// A nil literal resolves to an empty body.
		return def.Response, nil
	}
}

// runScript evaluates a JavaScript handler. The source must be a
// function expression taking (ctx, logger); ctx carries method, path,
// params, query, headers, body and state. State mutations made by the
// script write through to the shared store.
func (r *responseResolver) runScript(def *Definition, ctx *RequestContext) (interface{}, error) {
	vm := goja.New()

	jsLogger := map[string]interface{}{
		"debug": func(msg string, args ...interface{}) { r.logger.Debugf(msg, args...) },
		"info":  func(msg string, args ...interface{}) { r.logger.Infof(msg, args...) },
		"warn":  func(msg string, args ...interface{}) { r.logger.Warnf(msg, args...) },
		"error": func(msg string, args ...interface{}) { r.logger.Errorf(msg, args...) },
	}

	vm.Set("ctx", ctx.scriptObject())
	vm.Set("logger", jsLogger)

	script := fmt.Sprintf(`
		(function() {
			var fn = %s;
			if (typeof fn !== 'function') {
				throw new Error("script must evaluate to a function");
			}
			return fn(ctx, logger);
		})()
	`, def.Script)

	val, err := vm.RunString(script)
	if err != nil {
		return nil, util.NewScriptError(err.Error(), def.Method+" "+def.Path)
	}

	if util.IsUndefined(val) || util.IsNull(val) {
		return nil, nil
	}

	exported := val.Export()

	// Scripts cannot construct a typed Reply, so an object of shape
	// {data, status?, headers?} stands in for one. The shape requires
	// at least one of status/headers so ordinary payloads that happen
	// to carry a data field stay payloads.
	if m, ok := exported.(map[string]interface{}); ok {
		if reply, ok := replyFromObject(m); ok {
			return reply, nil
		}
	}

	return exported, nil
}

// replyFromObject converts a {data, status?, headers?} script result
// into a Reply.
func replyFromObject(m map[string]interface{}) (*Reply, bool) {
	data, hasData := m["data"]
	if !hasData {
		return nil, false
	}
	status, hasStatus := m["status"]
	headers, hasHeaders := m["headers"]
	if !hasStatus && !hasHeaders {
		return nil, false
	}
	if len(m) > 3 {
		return nil, false
	}

	reply := &Reply{Data: data}
	if hasStatus {
		switch v := status.(type) {
		case int64:
			reply.Status = int(v)
		case float64:
			reply.Status = int(v)
		case int:
			reply.Status = v
		default:
			return nil, false
		}
	}
	if hasHeaders {
		hm, ok := headers.(map[string]interface{})
		if !ok {
			return nil, false
		}
		reply.Headers = make(map[string]string, len(hm))
		for k, v := range hm {
			reply.Headers[k] = fmt.Sprint(v)
		}
	}
	return reply, true
}
