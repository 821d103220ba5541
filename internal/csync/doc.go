// Package csync provides small thread-safe collections shared by the host
// bridge and the approval queue.
//
// Map guards a plain Go map behind a RWMutex. Queue is a FIFO whose head is
// the only element most callers care about:
//
//	pending := csync.NewQueue[*Request]()
//	pending.PushBack(req)
//	if head, ok := pending.Front(); ok {
//		// render head
//	}
//	pending.PopFront()
//
// All operations can be called from multiple goroutines.
package csync
