package auth

import "context"

type contextKey int

const (
	componentKey contextKey = iota
	scopesKey
)

// GetComponent returns the authenticated component ID, or "" when unauthenticated
func GetComponent(ctx context.Context) string {
	id, _ := ctx.Value(componentKey).(string)
	return id
}

// SetComponent returns a context carrying the component ID and its scopes
func SetComponent(ctx context.Context, componentID string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, componentKey, componentID)
	if len(scopes) > 0 {
		ctx = context.WithValue(ctx, scopesKey, scopes)
	}
	return ctx
}

// GetScopes returns the scopes of the authenticated component
func GetScopes(ctx context.Context) []string {
	if scopes, ok := ctx.Value(scopesKey).([]string); ok {
		return scopes
	}
	return []string{}
}
