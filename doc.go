// Package shopdex is an in-process catalog search and recommendation engine.
//
// The engine ranks a product catalog supplied by the caller. It never stores
// products itself; every call reads a consistent snapshot of the catalog.
//
//	catalog := shopdex.NewMemoryCatalog(products...)
//	engine, _ := shopdex.New(catalog,
//	    shopdex.WithSnapshotCache(30*time.Second),
//	    shopdex.WithBehaviors(shopdex.NewMemoryBehaviors(0)),
//	)
//	hits, _ := engine.Search(ctx, "wireless headphones under 100")
//	similar, _ := engine.SimilarProducts(ctx, "hp-01")
//	recs, _ := engine.Recommendations(ctx, "user-42")
//
// # Search
//
// Queries are lowercased. Price phrases in whole currency units ("under 50",
// "between 10 and 20") become price filters; the remaining words, minus
// stopwords, are keywords. Each product scores the sum of log(1+n) over keyword occurrence
// counts n in its title, description and tags, boosted by rating. At most 20
// results are returned, best first, ties broken by product id.
//
// # Similar products
//
// Products are compared by cosine similarity of term-count vectors built
// from title and tags. At most 10 results above 0.1 are returned.
//
// # Recommendations
//
// Without behavior data the engine recommends the highest rated products.
// With a [BehaviorSource], users with recorded interactions get products
// sharing tags with what they viewed, carted or bought.
package shopdex
