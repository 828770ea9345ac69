// Package pkg provides the libraries behind moviegraph, a renderer for
// bipartite user–movie rating graphs.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [bipartite] (interaction maps and graphs), [force] (the
//     seeded force simulation), [render] and its serializers
//  2. Data: [movielens] (dataset parsing, genre sets), [ratings] (MongoDB
//     store), [reorder] (matrix seriation)
//  3. Infrastructure: [cache], [config], [errors], [observability],
//     [buildinfo]
//  4. Orchestration: [pipeline] (decode → build → simulate → render) and
//     [server] (HTTP)
//
// # Architecture
//
// The data flow for one render:
//
//	{"u1":["m1","m2"],"u2":["m2"]}
//	         ↓
//	    [bipartite] decode + build (nodes in first-appearance order)
//	         ↓
//	    [force] simulate (600 steps, fixed seed)
//	         ↓
//	    [render] scene → svg | raster | nodelink
//	         ↓
//	    SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, []byte(`{"u1":["m1"]}`), pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("graph.svg", res.Artifact, 0o644)
//
// Serve it over HTTP:
//
//	srv := server.New(config.Default(), server.Deps{Runner: runner, Logger: logger})
//	srv.ListenAndServe(ctx)
package pkg
