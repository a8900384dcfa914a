// Package dataprocessing turns raw per-student subject scores into a ranked,
// graded cohort report.
//
// # Architecture
//
// The package is organized as a pipeline of small pure steps:
//
// 1. Parser: reads CSV or Excel uploads into a Batch of raw records
// 2. Normalizer: validates one raw record and coerces its scores
// 3. Aggregator: derives totals, points, failures and the overall grade
// 4. Ranker: orders students by average and assigns positions
// 5. Cohort: gender, stream and per-subject statistics
//
// The Engine strings these together and assembles the AnalyticsResult.
//
// # Usage
//
//	engine, err := dataprocessing.NewEngine(logger, dataprocessing.DefaultEngineConfig())
//	if err != nil {
//	    return err
//	}
//	batch, err := dataprocessing.NewParser(logger, engine.Subjects()).ParseFile("grade8.csv")
//	if err != nil {
//	    return err
//	}
//	result, err := engine.ProcessBatch(ctx, batch)
//
// # Data Flow
//
//	CSV/XLSX → Parser → RawRecords → Normalizer → Aggregator → Ranker → Cohort → AnalyticsResult
//
// # Error Handling
//
// A batch is processed all-or-nothing. Any record that is missing a subject
// or carries a non-numeric score fails the whole batch with a
// *MalformedRecordError, which matches ErrMalformedRecord under errors.Is.
// An empty batch fails with ErrEmptyBatch. Scores outside 0..100 are
// graded as given and never clamped.
//
// # Testing
//
// Use table-driven tests when adding new functionality.
package dataprocessing
