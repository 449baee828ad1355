// Package service contains the application-specific use cases. It sits
// between the HTTP layer and the task queue: proposal operations are
// wrapped into closures and submitted to the queue for sequential
// execution, and runtime settings are persisted across restarts.
package service
