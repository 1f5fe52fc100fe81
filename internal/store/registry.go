package store

import "sync"

// Process-wide set of open data stores. The lifecycle is explicit: a store
// registers itself on Open and leaves on Close; Drain closes whatever is
// left at shutdown. The grounder never reaches into this registry.
var (
	openMu     sync.Mutex
	openStores = make(map[*DataStore]struct{})
)

func registerOpenStore(ds *DataStore) {
	openMu.Lock()
	defer openMu.Unlock()
	openStores[ds] = struct{}{}
}

func unregisterOpenStore(ds *DataStore) {
	openMu.Lock()
	defer openMu.Unlock()
	delete(openStores, ds)
}

// OpenDataStores returns a snapshot of all currently open data stores.
func OpenDataStores() []*DataStore {
	openMu.Lock()
	defer openMu.Unlock()
	out := make([]*DataStore, 0, len(openStores))
	for ds := range openStores {
		out = append(out, ds)
	}
	return out
}

// Drain force-closes every open data store, releasing their databases
// first. Intended for process shutdown. Returns the first error
// encountered but keeps draining.
func Drain() error {
	var firstErr error
	for _, ds := range OpenDataStores() {
		if err := ds.forceClose(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
