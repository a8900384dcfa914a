// Package exporter writes a processed cohort out of the engine: a CSV of
// every student with a UTF-8 BOM so Excel opens it cleanly, and an XLSX
// workbook with Students, Subjects, Streams and Remediation sheets.
//
// Both writers take an io.Writer so HTTP handlers can stream downloads, and
// both offer WriteFile for the CLI, which resolves relative names against the
// reports directory.
package exporter
