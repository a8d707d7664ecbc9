package sst_test

import (
	"sync"
	"sync/atomic"
	"time"

	sst "github.com/apache/paimon-go"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// countingStream wraps a fixed in-memory buffer, counting ReadAt
// calls and sleeping briefly so concurrent callers actually overlap.
type countingStream struct {
	buf   []byte
	calls int64
}

func (s *countingStream) ReadAt(p []byte, off int64) error {
	atomic.AddInt64(&s.calls, 1)
	time.Sleep(time.Millisecond)
	copy(p, s.buf[off:int(off)+len(p)])
	return nil
}
func (s *countingStream) Size() int64  { return int64(len(s.buf)) }
func (s *countingStream) Close() error { return nil }

var _ = Describe("Cache", func() {
	It("NoCache always calls the loader", func() {
		c := sst.NewNoCache()
		calls := 0
		load := func() (*sst.Bytes, error) {
			calls++
			return sst.NewDefaultPool().Allocate(1), nil
		}
		key := sst.CacheKey{Path: "p", Offset: 0, Length: 1}
		_, _ = c.Get(key, load)
		_, _ = c.Get(key, load)
		Expect(calls).To(Equal(2))
	})

	It("LRUCache caches across Get calls and reports hits/misses", func() {
		c := sst.NewLRUCache(4, nil)
		calls := 0
		load := func() (*sst.Bytes, error) {
			calls++
			b := sst.NewDefaultPool().Allocate(4)
			copy(b.Data(), []byte("data"))
			return b, nil
		}
		key := sst.CacheKey{Path: "p", Offset: 0, Length: 4}

		v1, err := c.Get(key, load)
		Expect(err).NotTo(HaveOccurred())
		v2, err := c.Get(key, load)
		Expect(err).NotTo(HaveOccurred())

		Expect(calls).To(Equal(1))
		Expect(v1).To(BeIdenticalTo(v2))

		hits, misses := c.Stats()
		Expect(hits).To(Equal(int64(1)))
		Expect(misses).To(Equal(int64(1)))
	})

	It("LRUCache evicts the least recently used entry over capacity", func() {
		c := sst.NewLRUCache(2, nil)
		load := func(tag byte) func() (*sst.Bytes, error) {
			return func() (*sst.Bytes, error) {
				b := sst.NewDefaultPool().Allocate(1)
				b.Data()[0] = tag
				return b, nil
			}
		}
		k1 := sst.CacheKey{Path: "p", Offset: 1}
		k2 := sst.CacheKey{Path: "p", Offset: 2}
		k3 := sst.CacheKey{Path: "p", Offset: 3}

		_, _ = c.Get(k1, load(1))
		_, _ = c.Get(k2, load(2))
		_, _ = c.Get(k3, load(3)) // evicts k1, the LRU entry

		m := c.AsMap()
		_, hasK1 := m[k1]
		_, hasK2 := m[k2]
		_, hasK3 := m[k3]
		Expect(hasK1).To(BeFalse())
		Expect(hasK2).To(BeTrue())
		Expect(hasK3).To(BeTrue())
	})

	It("Invalidate and InvalidateAll drop entries", func() {
		c := sst.NewLRUCache(4, nil)
		load := func() (*sst.Bytes, error) { return sst.NewDefaultPool().Allocate(1), nil }
		k1 := sst.CacheKey{Path: "p", Offset: 1}
		k2 := sst.CacheKey{Path: "p", Offset: 2}
		_, _ = c.Get(k1, load)
		_, _ = c.Get(k2, load)

		c.Invalidate(k1)
		Expect(c.AsMap()).To(HaveLen(1))

		c.InvalidateAll()
		Expect(c.AsMap()).To(BeEmpty())
	})

	It("BlockCache single-flights concurrent loads of the same region", func() {
		stream := &countingStream{buf: []byte("0123456789ABCDEF")}
		mgr := sst.NewCacheManager(sst.NewLRUCache(8, nil), sst.NewLRUCache(8, nil))
		bc := sst.NewBlockCache("t.sst", stream, sst.NewDefaultPool(), mgr)

		var wg sync.WaitGroup
		results := make([][]byte, 20)
		errs := make([]error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b, err := bc.GetBlock(0, 4, false)
				errs[i] = err
				if err == nil {
					results[i] = b.Data()
				}
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(atomic.LoadInt64(&stream.calls)).To(Equal(int64(1)))
		for _, r := range results {
			Expect(string(r)).To(Equal("0123"))
		}
	})
})
