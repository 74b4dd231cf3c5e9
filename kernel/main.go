package main

import "fmt"
import "os"
import "runtime"
import "sync"
import "time"

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"
import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/limits"
import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/turnstile"

// boots a turnstile table and runs the priority inversion scenarios
// against it, printing what happens.

type owners_t struct {
	sync.Mutex
	m map[defs.Wchan_t]*turnstile.Lwp_t
}

func (o *owners_t) set(w defs.Wchan_t, l *turnstile.Lwp_t) {
	o.Lock()
	o.m[w] = l
	o.Unlock()
}

func (o *owners_t) owner(w defs.Wchan_t) *turnstile.Lwp_t {
	o.Lock()
	defer o.Unlock()
	return o.m[w]
}

var tt *turnstile.Tstab_t
var owners = &owners_t{m: make(map[defs.Wchan_t]*turnstile.Lwp_t)}
var sobj = turnstile.Mksobj("kmutex", defs.SOBJ_SLEEPQ_SORTED,
	owners.owner)
var failed bool

func mklwp(tid int, prio defs.Pri_t) *turnstile.Lwp_t {
	l, err := tt.Mklwp(defs.Tid_t(tid), prio)
	if err != 0 {
		fmt.Printf("mklwp %d: %d\n", tid, err)
		os.Exit(1)
	}
	return l
}

func sleepon(l *turnstile.Lwp_t, obj defs.Wchan_t) chan bool {
	done := make(chan bool, 1)
	go func() {
		ts := tt.Lookup(obj)
		tt.Block(l, ts, defs.TS_WRITER_Q, obj, sobj)
		done <- true
	}()
	for l.Wchan() != obj {
		runtime.Gosched()
	}
	return done
}

func wake(obj defs.Wchan_t, nl *turnstile.Lwp_t) {
	ts := tt.Lookup(obj)
	if ts == nil {
		tt.Exit(obj)
		fmt.Printf("no turnstile for %#x\n", obj)
		failed = true
		return
	}
	tt.Wakeup(ts, defs.TS_WRITER_Q, 1, nl)
}

// waits for l to reach effective priority want.
func expect(what string, l *turnstile.Lwp_t, want defs.Pri_t) {
	deadline := time.Now().Add(time.Second)
	for l.Eprio() != want && time.Now().Before(deadline) {
		runtime.Gosched()
	}
	got := l.Eprio()
	res := "ok"
	if got != want {
		res = "FAIL"
		failed = true
	}
	fmt.Printf("  %-28s %v eprio %3d (want %3d) %s\n", what, l, got, want,
		res)
}

func inversion() {
	fmt.Printf("single owner:\n")
	Y := defs.Wchan_t(0x1000)
	o := mklwp(1, 5)
	t1 := mklwp(2, 40)
	owners.set(Y, o)
	d := sleepon(t1, Y)
	expect("waiter blocked", o, 40)
	tt.Print(os.Stdout, Y)
	wake(Y, t1)
	<-d
	expect("waiter woken", o, 5)
}

func chain() {
	fmt.Printf("chained owners:\n")
	r1, r2 := defs.Wchan_t(0x2000), defs.Wchan_t(0x3000)
	a := mklwp(3, 10)
	c := mklwp(4, 5)
	b := mklwp(5, 50)
	owners.set(r1, a)
	owners.set(r2, c)
	da := sleepon(a, r2)
	expect("a blocks on c", c, 10)
	db := sleepon(b, r1)
	expect("b blocks on a", a, 50)
	expect("b blocks on a", c, 50)
	owners.set(r2, a)
	wake(r2, a)
	<-da
	expect("c releases to a", c, 5)
	expect("c releases to a", a, 50)
	owners.set(r1, b)
	wake(r1, b)
	<-db
	expect("a releases to b", a, 10)
}

func main() {
	lim := limits.Syslimit
	tt = turnstile.MkTstab(lim)
	fmt.Printf("turnstiles: %d chains\n", lim.Tshash)

	inversion()
	chain()

	tt.Fini()
	fmt.Printf("stats:%v", tt.Stats())
	if failed {
		fmt.Printf("FAILED\n")
		os.Exit(1)
	}
	fmt.Printf("done\n")
}
