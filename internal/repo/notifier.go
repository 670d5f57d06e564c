package repo

import (
	"context"
	"sync"
)

// notifier fans change events out to in-process watchers. It backs Watch for
// the stores that have no server-side change feed of their own.
type notifier struct {
	mu       sync.Mutex
	next     int
	watchers map[string]map[int]func()
}

func newNotifier() *notifier {
	return &notifier{watchers: map[string]map[int]func(){}}
}

// watch registers notify for collection, fires it once, and blocks until ctx is done.
func (n *notifier) watch(ctx context.Context, collection string, notify func()) error {
	n.mu.Lock()
	id := n.next
	n.next++
	if n.watchers[collection] == nil {
		n.watchers[collection] = map[int]func(){}
	}
	n.watchers[collection][id] = notify
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		delete(n.watchers[collection], id)
		if len(n.watchers[collection]) == 0 {
			delete(n.watchers, collection)
		}
		n.mu.Unlock()
	}()

	notify()
	<-ctx.Done()
	return ctx.Err()
}

// publish calls every watcher of collection. Callers must not hold store locks.
func (n *notifier) publish(collection string) {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.watchers[collection]))
	for _, fn := range n.watchers[collection] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
