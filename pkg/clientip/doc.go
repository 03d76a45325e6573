// Package clientip resolves the visitor IP address of an HTTP request.
//
// A Resolver walks a configured list of proxy headers (CF-Connecting-IP,
// X-Forwarded-For, ...) and falls back to RemoteAddr. Values are validated
// with net/netip and normalized, so the result can be handed straight to the
// robot detector.
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware(clientip.New(clientip.DefaultHeaders...)))
//
//	ip := clientip.FromContext(req.Context())
//
// Only trust forwarding headers when a proxy you control sets them; otherwise
// use clientip.New() which reads RemoteAddr only.
package clientip
