// Package turnstile implements turnstiles: the blocking primitive under
// kernel mutexes and rwlocks, with priority inheritance.
//
// A turnstile holds the LWPs blocked on one wait channel in two sub-queues,
// readers and writers. Every LWP is created with a turnstile of its own. The
// first LWP to block on an idle channel lends its turnstile to the hash
// table; later blockers park theirs on that turnstile's free list. When an
// LWP is woken it takes a spare from the free list, or the turnstile itself
// if it was the last waiter, so every LWP always leaves with exactly one.
//
// Blocking lends the blocker's priority down the chain of owners it waits
// behind; waking a turnstile takes the priority back from its inheritor.
package turnstile

import "fmt"
import "time"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/caller"
import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// assertions on the linkage and lock state
const Debug = true

const tswmesg = "tstile"

type tsstate_t int

const (
	// owned by an LWP that is not blocked
	TS_IDLE tsstate_t = iota
	// on a hash chain, representing obj
	TS_ACTIVE
	// parked on the free list of an active turnstile
	TS_FREE
)

func (s tsstate_t) String() string {
	switch s {
	case TS_IDLE:
		return "idle"
	case TS_ACTIVE:
		return "active"
	case TS_FREE:
		return "free"
	}
	return "bad"
}

type Turnstile_t struct {
	state tsstate_t
	obj   defs.Wchan_t
	// chain link while active, free list link while free
	next *Turnstile_t
	// spares parked by later blockers; only while active
	free    *Turnstile_t
	sleepq  [defs.TS_NQUEUES]Sleepq_t
	waiters [defs.TS_NQUEUES]int
	// the LWP we lend priority to and the highest priority lent
	inheritor *Lwp_t
	eprio     defs.Pri_t
}

func ts_ctor(ts *Turnstile_t) {
	*ts = Turnstile_t{}
	ts.state = TS_IDLE
	ts.eprio = defs.PRI_NONE
	for i := range ts.sleepq {
		ts.sleepq[i].init()
	}
}

func tsassert(c bool, msg string) {
	if Debug && !c {
		caller.Callerdump(1)
		panic(msg)
	}
}

func validq(q int) bool {
	return q == defs.TS_READER_Q || q == defs.TS_WRITER_Q
}

// Mklwp creates an LWP with priority prio and its turnstile. It fails with
// -EAGAIN when the LWP limit is reached.
func (tt *Tstab_t) Mklwp(tid defs.Tid_t, prio defs.Pri_t) (*Lwp_t, defs.Err_t) {
	if !tt.lim.Lwps.Take() {
		return nil, -defs.EAGAIN
	}
	l := &Lwp_t{Tid: tid, prio: prio, inhprio: defs.PRI_NONE}
	l.mutex.Store(&l.own)
	l.wakech = make(chan bool, 1)
	l.ts = &Turnstile_t{}
	ts_ctor(l.ts)
	return l, 0
}

// Lwp_exit retires l. l must not be blocked nor inherit priority.
func (tt *Tstab_t) Lwp_exit(l *Lwp_t) {
	l.Lock()
	tsassert(l.wchan == 0 && l.sleepq == nil, "exiting lwp is asleep")
	tsassert(len(l.lenders) == 0, "exiting lwp still inherits priority")
	l.Unlock()
	ts := l.ts
	tsassert(ts.state == TS_IDLE, "exiting lwp's turnstile is in use")
	tsassert(ts.free == nil && ts.inheritor == nil &&
		ts.waiters[0]+ts.waiters[1] == 0, "exiting lwp's turnstile is dirty")
	tt.lim.Lwps.Give()
}

// Block puts l, the calling LWP, to sleep on sub-queue q of the turnstile
// for obj. ts is what Lookup(obj) returned and the chain lock from Lookup
// must still be held; it is released once l is asleep. Before sleeping l
// lends its priority to the owner of obj as told by sobj, and onwards. Block
// returns after l has been woken by Wakeup.
func (tt *Tstab_t) Block(l *Lwp_t, ts *Turnstile_t, q int, obj defs.Wchan_t,
	sobj Syncobj_i) {
	tc := tt.chain(obj)
	tsassert(validq(q), "bad turnstile queue")
	tsassert(obj != 0, "null wait channel")
	if Debug && tc.TryLock() {
		tc.Unlock()
		panic("turnstile_block: chain not locked")
	}
	start := time.Now()
	tt.st.Nblock.Inc()

	if ts == nil {
		// first waiter: our turnstile becomes the channel's
		ts = l.ts
		tsassert(ts.state == TS_IDLE, "blocking lwp's turnstile is in use")
		tsassert(ts.free == nil && ts.inheritor == nil &&
			ts.waiters[0]+ts.waiters[1] == 0,
			"blocking lwp's turnstile is dirty")
		ts.obj = obj
		ts.state = TS_ACTIVE
		tc.insert(ts)
	} else {
		// the channel has a turnstile; park ours on its free list
		tsassert(ts.state == TS_ACTIVE && ts.obj == obj,
			"turnstile does not match channel")
		ots := l.ts
		tsassert(ots.state == TS_IDLE && ots != ts,
			"blocking lwp's turnstile is in use")
		ots.state = TS_FREE
		ots.next = ts.free
		ts.free = ots
		l.ts = ts
		tt.st.Nshare.Inc()
	}
	ts.waiters[q]++

	// from here on the chain lock is l's lock
	l.Lock()
	lwp_unlock_to(l, &tc.Mutex)
	ts.sleepq[q].enqueue(l, obj, tswmesg, sobj)

	kpreempt_disable(l)
	tt.lendpri(l)
	if tt.parkhook != nil {
		tt.parkhook(l)
	}
	sleepq_block(l)
	kpreempt_enable(l)
	tt.st.Tblocked.Add(start)
}

// remove takes l off sub-queue q of ts and makes it runnable. l leaves with
// a spare from the free list, or with ts itself if it was the last waiter.
func (tt *Tstab_t) remove(ts *Turnstile_t, l *Lwp_t, q int) {
	tsassert(l.ts == ts, "lwp does not share the turnstile")
	if nts := ts.free; nts != nil {
		tsassert(nts.state == TS_FREE, "corrupt turnstile free list")
		ts.free = nts.next
		nts.next = nil
		nts.obj = 0
		nts.state = TS_IDLE
		l.ts = nts
		tt.st.Nfreepop.Inc()
	} else {
		tsassert(ts.waiters[0]+ts.waiters[1] == 1,
			"turnstile free list short of waiters")
		tsassert(ts.inheritor == nil, "idle turnstile still lends")
		tt.chain(ts.obj).unlink(ts)
		ts.obj = 0
		ts.state = TS_IDLE
	}
	ts.waiters[q]--
	ts.sleepq[q].remove(l)
	tt.st.Nwoken.Inc()
	setrunnable(l)
}

// Wakeup wakes count LWPs from the front of sub-queue q of ts, or exactly
// nl if it is not nil. The caller holds the chain lock from Lookup and is
// the inheritor of ts, if ts has one; priority lent through ts is taken
// back first. The chain lock is released on return.
func (tt *Tstab_t) Wakeup(ts *Turnstile_t, q int, count int, nl *Lwp_t) {
	tsassert(ts.state == TS_ACTIVE, "wakeup on inactive turnstile")
	tsassert(validq(q), "bad turnstile queue")
	tc := tt.chain(ts.obj)
	tt.st.Nwakeup.Inc()

	if ts.inheritor != nil {
		tt.unlendpri(ts)
	}
	if nl != nil {
		tsassert(nl.sleepq == &ts.sleepq[q], "lwp not on turnstile queue")
		tt.remove(ts, nl, q)
	} else {
		tsassert(count > 0 && count <= ts.waiters[q],
			fmt.Sprintf("wakeup of %d with %d waiting", count,
				ts.waiters[q]))
		for ; count > 0; count-- {
			tt.remove(ts, ts.sleepq[q].first(), q)
		}
	}
	tc.Unlock()
}

// Unsleep would cancel a turnstile wait. Turnstile waits cannot be
// interrupted.
func (tt *Tstab_t) Unsleep(l *Lwp_t) {
	caller.Callerdump(0)
	panic(fmt.Sprintf("turnstile_unsleep: %v", l))
}

// Changepri sets the base priority of l, which is asleep on a turnstile,
// and moves it within its sub-queue.
// XXX priority lent by l is not recomputed.
func (tt *Tstab_t) Changepri(l *Lwp_t, pri defs.Pri_t) {
	l.Lock()
	defer l.Unlock()
	if l.sleepq == nil || l.wmesg != tswmesg {
		panic("turnstile_changepri: lwp not on a turnstile")
	}
	l.sleepq.changepri(l, pri)
}

// Waiters returns the number of LWPs on sub-queue q of ts. The caller holds
// the chain lock.
func (tt *Tstab_t) Waiters(ts *Turnstile_t, q int) int {
	tsassert(validq(q), "bad turnstile queue")
	return ts.waiters[q]
}
