package turnstile

import "fmt"
import "runtime"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// lendpri lends the priority of cur, which is about to sleep and whose lock
// is held, to the owner of what it sleeps on, then to the owner of what that
// owner sleeps on, and so on. cur's lock is held again on return.
//
// Walking the chain means holding one LWP lock while taking the next. The
// next is only ever try-locked; on failure, or if the chain changed under
// us, we drop everything and start over from cur.
//
// If this panics, a lock was most likely destroyed or corrupted while
// still in use.
func (tt *Tstab_t) lendpri(cur *Lwp_t) {
	tsassert(kpreempt_disabled(cur), "lending with preemption enabled")
	l := cur
	prio := lwp_eprio(l)
	hops := 0
	for {
		if l.wchan == 0 {
			break
		}
		owner := l.sobj.Owner(l.wchan)
		if owner == nil {
			break
		}
		// we own it; sleepq_block will not sleep for long
		if owner == cur {
			break
		}
		dolock := !lwp_samelock(l, owner)
		err := defs.Err_t(0)
		if dolock {
			err = lwp_trylock(owner)
		}
		if l == owner || err != 0 {
			// the owner changed behind us or is busy
			tt.st.Nrestart.Inc()
			l.Unlock()
			runtime.Gosched()
			l = cur
			l.Lock()
			prio = lwp_eprio(l)
			hops = 0
			continue
		}
		if hops++; hops > tt.lim.Lendmax {
			panic(fmt.Sprintf("turnstile_lendpri: chain from %v "+
				"longer than %d", cur, tt.lim.Lendmax))
		}
		if prio <= lwp_eprio(owner) {
			if dolock {
				owner.Unlock()
			}
			break
		}
		ts := l.ts
		tsassert(ts.state == TS_ACTIVE && ts.obj == l.wchan,
			"sleeping lwp's turnstile does not match its channel")
		tsassert(ts.inheritor == owner || ts.inheritor == nil,
			"turnstile lends to two owners")
		if ts.inheritor == nil {
			ts.inheritor = owner
			ts.eprio = prio
			owner.lenders = append(owner.lenders, ts)
			lwp_lendpri(owner, prio)
			tt.st.Nlend.Inc()
		} else if prio > ts.eprio {
			ts.eprio = prio
			lwp_lendpri(owner, prio)
			tt.st.Nlend.Inc()
		}
		if dolock {
			l.Unlock()
		}
		l = owner
	}
	if !lwp_samelock(l, cur) {
		l.Unlock()
		cur.Lock()
	}
}

// unlendpri takes back the priority lent through ts from its inheritor, who
// keeps the highest priority still lent by its other turnstiles. The chain
// lock of ts is held.
func (tt *Tstab_t) unlendpri(ts *Turnstile_t) {
	l := ts.inheritor
	ts.inheritor = nil
	tc := tt.chain(ts.obj)
	dolock := l.mutex.Load() != &tc.Mutex
	if dolock {
		l.Lock()
	}
	prio := defs.PRI_NONE
	found := false
	rest := l.lenders[:0]
	for _, o := range l.lenders {
		if o == ts {
			found = true
			continue
		}
		if o.eprio > prio {
			prio = o.eprio
		}
		rest = append(rest, o)
	}
	tsassert(found, "turnstile missing from inheritor's lenders")
	for i := len(rest); i < len(l.lenders); i++ {
		l.lenders[i] = nil
	}
	l.lenders = rest
	ts.eprio = defs.PRI_NONE
	lwp_lendpri(l, prio)
	tt.st.Nunlend.Inc()
	if dolock {
		l.Unlock()
	}
}
