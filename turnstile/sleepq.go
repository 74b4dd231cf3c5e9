package turnstile

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// Sleepq_t is an ordered list of LWPs asleep on one wait channel. It is
// protected by the lock of the LWPs on it, which for a turnstile sub-queue
// is the chain lock.
type Sleepq_t struct {
	q []*Lwp_t
}

func (sq *Sleepq_t) init() {
	sq.q = sq.q[:0]
}

func (sq *Sleepq_t) Len() int {
	return len(sq.q)
}

func (sq *Sleepq_t) first() *Lwp_t {
	if len(sq.q) == 0 {
		return nil
	}
	return sq.q[0]
}

// enqueue puts l to sleep on obj. Waiters of a sorted sync object are kept
// in descending priority order, FIFO among equals; all others in arrival
// order.
func (sq *Sleepq_t) enqueue(l *Lwp_t, obj defs.Wchan_t, wmesg string,
	sobj Syncobj_i) {
	if l.sleepq != nil || l.wchan != 0 {
		panic("already asleep")
	}
	l.wchan = obj
	l.wmesg = wmesg
	l.sobj = sobj
	l.sleepq = sq
	sq.insert(l)
}

func (sq *Sleepq_t) insert(l *Lwp_t) {
	if l.sobj.Flags()&defs.SOBJ_SLEEPQ_SORTED == 0 {
		sq.q = append(sq.q, l)
		return
	}
	pri := lwp_eprio(l)
	i := len(sq.q)
	for j, o := range sq.q {
		if lwp_eprio(o) < pri {
			i = j
			break
		}
	}
	sq.q = append(sq.q, nil)
	copy(sq.q[i+1:], sq.q[i:])
	sq.q[i] = l
}

func (sq *Sleepq_t) index(l *Lwp_t) int {
	for i, o := range sq.q {
		if o == l {
			return i
		}
	}
	return -1
}

func (sq *Sleepq_t) unlink(l *Lwp_t) {
	i := sq.index(l)
	if i < 0 {
		panic("lwp not on sleep queue")
	}
	copy(sq.q[i:], sq.q[i+1:])
	sq.q[len(sq.q)-1] = nil
	sq.q = sq.q[:len(sq.q)-1]
}

// remove takes l off the queue and clears its sleep state. It does not make
// l runnable.
func (sq *Sleepq_t) remove(l *Lwp_t) {
	if l.sleepq != sq {
		panic("lwp on another sleep queue")
	}
	sq.unlink(l)
	l.wchan = 0
	l.wmesg = ""
	l.sobj = nil
	l.sleepq = nil
}

// reposition moves l after its effective priority changed.
func (sq *Sleepq_t) reposition(l *Lwp_t) {
	if l.sobj.Flags()&defs.SOBJ_SLEEPQ_SORTED == 0 {
		return
	}
	sq.unlink(l)
	sq.insert(l)
}

func (sq *Sleepq_t) changepri(l *Lwp_t, pri defs.Pri_t) {
	if l.prio == pri {
		return
	}
	l.prio = pri
	sq.reposition(l)
}

// waiters returns a snapshot of the queue in wakeup order.
func (sq *Sleepq_t) waiters() []*Lwp_t {
	ret := make([]*Lwp_t, len(sq.q))
	copy(ret, sq.q)
	return ret
}
