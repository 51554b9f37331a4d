// Package migrations registers the admin service's schema migrations.
// cmd/storeadmin imports it for its side effects.
package migrations
