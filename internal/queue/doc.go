// Package queue provides the ordered, backpressured channel that carries
// symbols from producers to the playback goroutine. Concurrent sends never
// interleave and a producer is never more than one value ahead of its
// consumer.
package queue
