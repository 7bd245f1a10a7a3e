// Package server provides HTTP routing, middleware, and the local
// sign-in callback surface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Sign-In Callback Handler
//
// [SignInHandler] implements the OAuth2 authorization code callback flow
// for `traylist auth login`: a temporary HTTP server starts on localhost,
// receives the host application's redirect, validates the state parameter
// (CSRF protection), exchanges the authorization code for tokens, and
// sends a signed-in event through a channel for the auth bridge to
// consume. It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
