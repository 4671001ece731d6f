/*
Package session serializes access to conversation sessions and persists the
clipboard between batches.

Locks are per key and reference counted. A distributed locker extends them
across agent replicas sharing one store and one workbook.
*/
package session
