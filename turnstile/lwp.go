package turnstile

import "fmt"
import "sync"
import "sync/atomic"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// Lwp_t is a kernel thread as seen by the turnstile code: its scheduling
// priorities, what it sleeps on, and the turnstile it owns.
//
// The scheduler lock of an LWP is whatever mutex l.mutex points at. A
// running LWP is covered by its own mutex; an LWP asleep on a turnstile is
// covered by the mutex of the chain that turnstile hangs off, so that the
// chain lock alone is enough to inspect or wake every LWP asleep in it. Only
// the holder of the current lock may swap the pointer.
type Lwp_t struct {
	Tid   defs.Tid_t
	mutex atomic.Pointer[sync.Mutex]
	own   sync.Mutex

	// the rest is protected by the LWP lock
	prio    defs.Pri_t
	inhprio defs.Pri_t
	wchan   defs.Wchan_t
	wmesg   string
	sobj    Syncobj_i
	sleepq  *Sleepq_t
	// turnstiles lending priority to this LWP
	lenders []*Turnstile_t

	// owned by the LWP while it runs, by the chain lock while it sleeps
	ts *Turnstile_t

	nopreempt int32
	wakech    chan bool
}

func (l *Lwp_t) String() string {
	return fmt.Sprintf("lwp %d", l.Tid)
}

// Lock acquires the scheduler lock currently covering l. The lock may move
// while we wait for it, in which case we chase it.
func (l *Lwp_t) Lock() {
	for {
		m := l.mutex.Load()
		m.Lock()
		if m == l.mutex.Load() {
			return
		}
		m.Unlock()
	}
}

func (l *Lwp_t) Unlock() {
	l.mutex.Load().Unlock()
}

// lwp_trylock takes the lock of l without waiting. It fails with
// -EWOULDBLOCK if the lock is contended or moved underneath us.
func lwp_trylock(l *Lwp_t) defs.Err_t {
	m := l.mutex.Load()
	if !m.TryLock() {
		return -defs.EWOULDBLOCK
	}
	if m != l.mutex.Load() {
		m.Unlock()
		return -defs.EWOULDBLOCK
	}
	return 0
}

// lwp_unlock_to makes nm, which the caller already holds, the lock of l and
// releases the old one.
func lwp_unlock_to(l *Lwp_t, nm *sync.Mutex) {
	om := l.mutex.Load()
	l.mutex.Store(nm)
	om.Unlock()
}

// lwp_setlock makes nm the lock of l without releasing the old one; the
// caller keeps holding the old lock and must not touch l afterwards.
func lwp_setlock(l *Lwp_t, nm *sync.Mutex) {
	l.mutex.Store(nm)
}

func lwp_samelock(a, b *Lwp_t) bool {
	return a.mutex.Load() == b.mutex.Load()
}

func lwp_eprio(l *Lwp_t) defs.Pri_t {
	if l.inhprio > l.prio {
		return l.inhprio
	}
	return l.prio
}

// lwp_lendpri records prio as the priority l inherits and keeps l's place in
// a sorted sleep queue consistent with it. PRI_NONE drops the boost.
func lwp_lendpri(l *Lwp_t, prio defs.Pri_t) {
	if l.inhprio == prio {
		return
	}
	l.inhprio = prio
	if l.sleepq != nil {
		l.sleepq.reposition(l)
	}
}

// goroutines cannot be kept on a CPU, so nothing honors nopreempt. It only
// marks the window between enqueueing and parking, and lendpri asserts it.
func kpreempt_disable(l *Lwp_t) {
	atomic.AddInt32(&l.nopreempt, 1)
}

func kpreempt_enable(l *Lwp_t) {
	if atomic.AddInt32(&l.nopreempt, -1) < 0 {
		panic("kpreempt_enable: not disabled")
	}
}

func kpreempt_disabled(l *Lwp_t) bool {
	return atomic.LoadInt32(&l.nopreempt) != 0
}

// setrunnable hands l back its own lock and lets it run. The caller holds
// l's old lock and must not touch l afterwards.
func setrunnable(l *Lwp_t) {
	lwp_setlock(l, &l.own)
	l.wakech <- true
}

// sleepq_block releases the lock of l, which must be the caller, and parks
// until some waker makes l runnable. There is no timeout and no signal
// delivery.
func sleepq_block(l *Lwp_t) {
	l.Unlock()
	<-l.wakech
}

// Eprio returns the effective priority of l, including lent priority.
func (l *Lwp_t) Eprio() defs.Pri_t {
	l.Lock()
	defer l.Unlock()
	return lwp_eprio(l)
}

// Inhprio returns the priority l currently inherits, or PRI_NONE.
func (l *Lwp_t) Inhprio() defs.Pri_t {
	l.Lock()
	defer l.Unlock()
	return l.inhprio
}

func (l *Lwp_t) Pri() defs.Pri_t {
	l.Lock()
	defer l.Unlock()
	return l.prio
}

// Wchan returns the channel l sleeps on, or 0 if it is not asleep.
func (l *Lwp_t) Wchan() defs.Wchan_t {
	l.Lock()
	defer l.Unlock()
	return l.wchan
}

// Setpri changes the base priority of l. An LWP asleep on a turnstile is
// moved within its sub-queue; lent priority is not recomputed.
func (l *Lwp_t) Setpri(pri defs.Pri_t) {
	l.Lock()
	defer l.Unlock()
	if l.sleepq != nil {
		l.sleepq.changepri(l, pri)
		return
	}
	l.prio = pri
}

// Ts returns the turnstile l currently owns. Only meaningful while l runs.
func (l *Lwp_t) Ts() *Turnstile_t {
	return l.ts
}
