// Package fernanden is the data layer of the fernanden content site and its
// sub-brands (SHE, DENSE, CaFEE).
//
// A DB wraps a connection.Connection (the Supabase REST API, Postgres or
// SQLite) and adds two behaviours on top of it:
//
//   - ReadWithFallback runs a filtered read with a list of ordering
//     strategies, falling back to the next strategy when the store rejects
//     the query because a column is missing on this deployment.
//   - ToggleField flips a boolean column with a read-modify-write, optionally
//     guarded by a compare-and-swap predicate.
//
// Entity builds the per-entity services (products, blog posts, podcasts,
// ...) from a declarative Descriptor, so every entity shares one
// implementation of listing, lookup, search and CRUD.
//
// Basic usage:
//
//	cfg := connection.NewConfig()
//	cfg.BaseURL = "https://project.supabase.co"
//	cfg.APIKey = os.Getenv("SUPABASE_ANON_KEY")
//
//	db, err := fernanden.Open(ctx, constants.BackendPostgREST, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	products, err := db.Entity(fernanden.DefaultCatalog().MustGet("products"))
//	if err != nil {
//		return err
//	}
//	featured, err := products.GetFeatured(ctx)
//
// Errors follow one policy: list reads return an empty slice when nothing
// matches, single-row operations return *NotFoundError, a missing column is
// a *SchemaError, exhausted fallbacks are a *QueryFailure and input rejected
// before any network call is a *ValidationError.
package fernanden
