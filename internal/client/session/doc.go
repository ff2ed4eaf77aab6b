// Package session owns the CodeForge login state and the authenticated
// request pipeline.
//
// A Manager holds the current access/refresh token pair and the cached user,
// mirrors both into a kv.Repository, and exposes Do, which attaches the
// bearer token to every request. A 401 on the first attempt triggers a
// single shared token refresh, after which the request is replayed exactly
// once. Concurrent callers that hit 401 at the same time wait on the same
// refresh; a logout while a refresh is in flight always wins.
package session
