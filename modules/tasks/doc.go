// Package tasks implements per-user task CRUD under /api/tasks and the
// background reminder that emails owners about tasks coming due.
//
// Every storage call is scoped by owner: a task that belongs to someone else
// is indistinguishable from a missing one.
package tasks
