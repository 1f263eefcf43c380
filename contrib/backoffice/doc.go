// Package backoffice is the administrative back-office of the fernanden
// content site. It exposes the entity services of the fernanden package
// over a JSON HTTP API and a command line.
//
// The implementation lives in pkg/backoffice and the binary in
// cmd/backoffice:
//
//	backoffice migrate --backend sqlite --dsn ./fernanden.db
//	backoffice serve --backend sqlite --dsn ./fernanden.db --port 8080
//	backoffice list products --featured
//	backoffice toggle products 4f1c...
//
// Every flag can also be set in a config file (--config) or through
// FERNANDEN_* environment variables, e.g. FERNANDEN_SUPABASE_URL.
package backoffice
