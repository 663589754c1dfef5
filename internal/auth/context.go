package auth

import "context"

// identityKey はコンテキストに検証済みの身元を格納するためのキー。
type identityKey struct{}

// WithIdentity はコンテキストに検証済みの身元を設定する。
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom はコンテキストから検証済みの身元を取得する。
// Gateを通過していないコンテキストではfalseを返す。
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || identity.SubjectID == "" {
		return Identity{}, false
	}
	return identity, true
}
