// Package journal records pipeline run outcomes in a local SQLite
// database.
//
// The journal is append-only telemetry: one row per run with the stage
// reached, failure code if any, the built artifact and its version, the
// resolved input path and the downstream exit code. It backs the
// `simboot history` command. Journaling is best-effort - a journal
// failure never fails the pipeline.
package journal
