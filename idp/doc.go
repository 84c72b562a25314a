// Package idp implements the identity provider collaborator against a
// Keycloak-compatible OpenID Connect server: password and refresh grants,
// refresh-token revocation, and admin-API user creation.
//
// The session core treats the provider's responses as opaque beyond the
// access token, refresh token, and expiry fields. Grant flow internals,
// password policy, and token introspection are entirely the provider's
// concern.
package idp
