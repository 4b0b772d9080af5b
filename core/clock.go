package core

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

var (
	clockOnce sync.Once
	clockNow  unsafe.Pointer // *time.Time
)

// startClock starts the background goroutine that caches time.Now()
// every millisecond. The goroutine runs for the lifetime of the
// process; this is intentional because event timestamping typically
// spans the entire application lifecycle.
func startClock() {
	clockOnce.Do(func() {
		t := time.Now()
		atomic.StorePointer(&clockNow, unsafe.Pointer(&t))
		go func() {
			ticker := time.NewTicker(time.Millisecond)
			for range ticker.C {
				t := time.Now()
				atomic.StorePointer(&clockNow, unsafe.Pointer(&t))
			}
		}()
	})
}

// Now returns the most recently cached wall-clock time. Event
// timestamps do not need sub-millisecond precision, and the cached
// read keeps timestamping off the producer hot path. The clock is
// started on first use.
func Now() time.Time {
	p := atomic.LoadPointer(&clockNow)
	if p == nil {
		startClock()
		p = atomic.LoadPointer(&clockNow)
	}
	return *(*time.Time)(p)
}
