package notifications

import (
	"hash/fnv"
	"sync"
)

// stripedLock serializes fan-out per (profile, target) key without holding a
// lock object per subscription. Cross-machine coordination is out of scope;
// the database's unique index still protects subscription uniqueness across
// processes.
type stripedLock struct {
	stripes [64]sync.Mutex
}

func (l *stripedLock) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
