// Package scheduler decides which queued target runs next. It enforces
// sequential execution and stops the chain at the first failure, recording a
// skip reason for every target that does not run.
package scheduler
