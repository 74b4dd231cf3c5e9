package limits

import "unsafe"
import "sync/atomic"

type Sysatomic_t int64

type Syslimit_t struct {
	// number of turnstile hash buckets; a power of two
	Tshash int
	// hops a single lending walk may take before it is declared a cycle
	Lendmax int
	// live LWPs
	Lwps Sysatomic_t
}

// the limits the kernel boots with
var Syslimit *Syslimit_t = MkSysLimit()

func MkSysLimit() *Syslimit_t {
	return &Syslimit_t{
		Tshash:  64,
		Lendmax: 1024,
		Lwps:    1e4,
	}
}

func (s *Sysatomic_t) _aptr() *int64 {
	return (*int64)(unsafe.Pointer(s))
}

func (s *Sysatomic_t) Given(_n uint) {
	n := int64(_n)
	if n < 0 {
		panic("too mighty")
	}
	atomic.AddInt64(s._aptr(), n)
}

func (s *Sysatomic_t) Taken(_n uint) bool {
	n := int64(_n)
	if n < 0 {
		panic("too mighty")
	}
	g := atomic.AddInt64(s._aptr(), -n)
	if g >= 0 {
		return true
	}
	atomic.AddInt64(s._aptr(), n)
	return false
}

// returns false if the limit has been reached.
func (s *Sysatomic_t) Take() bool {
	return s.Taken(1)
}

func (s *Sysatomic_t) Give() {
	s.Given(1)
}

func (s *Sysatomic_t) Left() int64 {
	return atomic.LoadInt64(s._aptr())
}
