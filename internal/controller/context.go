package controller

import "context"

type contextKey int

const (
	clientCtxKey contextKey = iota
)

func (c controller) getClientFromCtx(ctx context.Context) *client {
	cl, ok := ctx.Value(clientCtxKey).(*client)
	if !ok {
		return nil
	}

	return cl
}

func (c controller) getConnIdFromCtx(ctx context.Context) string {
	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return ""
	}

	return cl.id
}
