// Package queue implements the in-process task queue that sequences
// calls to the LLM backend. A single worker loop drains a FIFO one task
// at a time, which keeps at most one generation call in flight and so
// avoids tripping upstream rate limits. Failed tasks are re-enqueued at
// the tail after a fixed per-task delay until their retry budget is
// exhausted; every task record is kept for the life of the process so
// clients can poll its status at any point.
package queue
