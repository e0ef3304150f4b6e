// Package mongo connects to MongoDB through the official v2 driver and
// exposes the small set of helpers the stores need: connection bootstrap with
// retries, a readiness check and duplicate-key detection for unique indexes.
package mongo
