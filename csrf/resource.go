package csrf

import "context"

// Operation is a state-changing handler method. It receives the target
// identifier, the decoded payload (nil for operations without one) and the
// request, and returns the operation result.
type Operation func(ctx context.Context, id string, payload map[string]any, req *Request) (any, error)

// Resource groups the state-changing operations of a handler. Any subset may
// be defined; a nil operation means the handler does not implement it.
type Resource struct {
	Create  Operation
	Replace Operation
	Remove  Operation
}

// Wrap returns a Resource whose operations validate the request before
// delegating to res.
//
// Create and Replace hand their payload to the validator as the body to
// check, so a token submitted as a payload field is accepted and stripped
// from the payload before the delegate runs. Remove validates against the
// header only; its payload is never consulted. When res leaves an operation
// nil the wrapper still validates but delegates to nothing and returns no
// result. Validator errors pass through untranslated, keeping their message
// and status code.
func (g *Guard) Wrap(res Resource) Resource {
	return Resource{
		Create:  g.guarded(res.Create, true),
		Replace: g.guarded(res.Replace, true),
		Remove:  g.guarded(res.Remove, false),
	}
}

func (g *Guard) guarded(op Operation, checkBody bool) Operation {
	return func(ctx context.Context, id string, payload map[string]any, req *Request) (any, error) {
		var body map[string]any
		if checkBody {
			body = payload
		}
		if err := g.Validate(req, body); err != nil {
			return nil, err
		}
		if op == nil {
			return nil, nil
		}
		return op(ctx, id, payload, req)
	}
}
