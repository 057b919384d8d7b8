// Package preflight diagnoses an indsearch setup before it is served.
//
// It checks that the configuration loads, that the catalog can be fetched,
// decoded and validated, that it indexes and answers a sample query, and
// that the log directory and the serve address are usable:
//
//	checker := preflight.New(preflight.WithOutput(os.Stdout))
//	results := checker.RunAll(ctx, target)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
