package turnstile

import "fmt"
import "math/bits"
import "sync"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"
import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/limits"
import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/stats"

// a hash bucket of active turnstiles. the mutex protects the chain, every
// turnstile on it, their free lists, and every LWP asleep on them.
type tschain_t struct {
	sync.Mutex
	first *Turnstile_t
}

type Tsstats_t struct {
	Nlookup  stats.Counter_t
	Nabort   stats.Counter_t
	Nblock   stats.Counter_t
	Nshare   stats.Counter_t
	Nwakeup  stats.Counter_t
	Nwoken   stats.Counter_t
	Nlend    stats.Counter_t
	Nrestart stats.Counter_t
	Nunlend  stats.Counter_t
	Nfreepop stats.Counter_t
	Tblocked stats.Nsecs_t
}

// Tstab_t is a turnstile hash table together with the LWPs created
// against it.
type Tstab_t struct {
	table []*tschain_t
	shift uint
	lim   *limits.Syslimit_t
	st    Tsstats_t
	// called with the chain lock held right before a blocking LWP parks
	parkhook func(*Lwp_t)
}

func MkTstab(lim *limits.Syslimit_t) *Tstab_t {
	n := lim.Tshash
	if n <= 0 || n&(n-1) != 0 {
		panic("turnstile hash size must be a power of two")
	}
	tt := &Tstab_t{lim: lim}
	tt.table = make([]*tschain_t, n)
	for i := range tt.table {
		tt.table[i] = &tschain_t{}
	}
	tt.shift = uint(32 - bits.TrailingZeros(uint(n)))
	return tt
}

func (tt *Tstab_t) String() string {
	s := ""
	for i, tc := range tt.table {
		tc.Lock()
		if tc.first != nil {
			s += fmt.Sprintf("c %d:\n", i)
			for ts := tc.first; ts != nil; ts = ts.next {
				s += fmt.Sprintf("(%#x, %d), ", ts.obj,
					ts.waiters[0]+ts.waiters[1])
			}
			s += fmt.Sprintf("\n")
		}
		tc.Unlock()
	}
	return s
}

func khash(obj defs.Wchan_t) uint32 {
	h := uint32(obj) ^ uint32(uint64(obj)>>32)
	return uint32(2654435761) * h
}

func (tt *Tstab_t) hash(obj defs.Wchan_t) int {
	return int(khash(obj) >> tt.shift)
}

func (tt *Tstab_t) chain(obj defs.Wchan_t) *tschain_t {
	return tt.table[tt.hash(obj)]
}

// Lookup returns the active turnstile for obj, or nil. Either way the chain
// lock for obj is held on return; the caller must pass it on to Block or
// Wakeup, or drop it with Exit.
func (tt *Tstab_t) Lookup(obj defs.Wchan_t) *Turnstile_t {
	tc := tt.chain(obj)
	tc.Lock()
	tt.st.Nlookup.Inc()
	for ts := tc.first; ts != nil; ts = ts.next {
		if ts.obj == obj {
			return ts
		}
	}
	return nil
}

// Exit drops the chain lock taken by Lookup when the caller decides not to
// block after all.
func (tt *Tstab_t) Exit(obj defs.Wchan_t) {
	tt.st.Nabort.Inc()
	tt.chain(obj).Unlock()
}

// Fini tears the table down. Any turnstile still active means a lock was
// destroyed with waiters on it.
func (tt *Tstab_t) Fini() {
	for _, tc := range tt.table {
		tc.Lock()
		ts := tc.first
		tc.Unlock()
		if ts != nil {
			panic(fmt.Sprintf("turnstile for %#x still active", ts.obj))
		}
	}
}

func (tc *tschain_t) insert(ts *Turnstile_t) {
	ts.next = tc.first
	tc.first = ts
}

func (tc *tschain_t) unlink(ts *Turnstile_t) {
	var last *Turnstile_t
	for e := tc.first; e != nil; e = e.next {
		if e == ts {
			if last == nil {
				tc.first = e.next
			} else {
				last.next = e.next
			}
			ts.next = nil
			return
		}
		last = e
	}
	panic("unlink of inactive turnstile")
}

// counts active turnstiles; for tests and the debugger.
func (tt *Tstab_t) nactive() int {
	n := 0
	for _, tc := range tt.table {
		tc.Lock()
		for ts := tc.first; ts != nil; ts = ts.next {
			n++
		}
		tc.Unlock()
	}
	return n
}

func (tt *Tstab_t) Stats() string {
	return stats.Stats2String(&tt.st)
}
