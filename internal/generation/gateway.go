package generation

import "context"

// Gateway sends a prompt to a generative service and returns the raw reply.
type Gateway interface {
	// Send returns the text of the first candidate. Failures wrap one of the
	// gateway errors declared in this package.
	Send(ctx context.Context, prompt string) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, prompt string) (string, error)

// Send implements Gateway.
func (f GatewayFunc) Send(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
