// Package shared holds helpers used across ClassPulse packages that belong to
// no single layer.
//
// The testutil subpackage provides a capturing slog handler for asserting on
// structured log output, and score-sheet fixtures (request records and CSV
// uploads) built from a list of learners:
//
//	logger, logs := testutil.NewTestLogger(t)
//	engine, _ := dataprocessing.NewEngine(logger, dataprocessing.DefaultEngineConfig())
//	_, err := engine.Process(ctx, testutil.RawRecords(domain.DefaultSubjects(), testutil.Class...))
//	testutil.AssertNoErrors(t, logs)
//
// testutil imports testify and must only be used from _test.go files.
package shared
