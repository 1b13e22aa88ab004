// Package engine ties the resolver and scheduler together. It runs the
// requested targets one at a time, stops at the first failure, reports
// progress events, and persists a snapshot of the last run.
package engine
