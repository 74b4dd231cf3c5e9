package turnstile

import "fmt"
import "io"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// Print describes the turnstile for obj, if any, and its waiters.
func (tt *Tstab_t) Print(w io.Writer, obj defs.Wchan_t) {
	tc := tt.chain(obj)
	tc.Lock()
	defer tc.Unlock()
	fmt.Fprintf(w, "Turnstile chain %d\n", tt.hash(obj))
	var ts *Turnstile_t
	for e := tc.first; e != nil; e = e.next {
		if e.obj == obj {
			ts = e
			break
		}
	}
	if ts == nil {
		fmt.Fprintf(w, "=> No active turnstile for %#x\n", obj)
		return
	}
	nfree := 0
	for f := ts.free; f != nil; f = f.next {
		nfree++
	}
	fmt.Fprintf(w, "=> Turnstile %p for %#x (%v)\n", ts, obj, ts.state)
	if ts.inheritor != nil {
		fmt.Fprintf(w, "=> Inheritor %v at priority %d\n", ts.inheritor,
			ts.eprio)
	}
	fmt.Fprintf(w, "=> %d spare turnstiles\n", nfree)
	pq := func(name string, q int) {
		fmt.Fprintf(w, "=> %d waiting %s:", ts.waiters[q], name)
		for _, l := range ts.sleepq[q].waiters() {
			fmt.Fprintf(w, " %d/%d", l.Tid, lwp_eprio(l))
		}
		fmt.Fprintf(w, "\n")
	}
	pq("readers", defs.TS_READER_Q)
	pq("writers", defs.TS_WRITER_Q)
}
