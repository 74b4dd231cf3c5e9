package turnstile

import "github.com/Stichting-MINIX-Research-Foundation/minix-sub143/defs"

// Syncobj_i is what a lock implementation tells the turnstile code about
// itself.
type Syncobj_i interface {
	// the LWP holding the object behind wchan, or nil if there is no
	// single owner
	Owner(wchan defs.Wchan_t) *Lwp_t
	// SOBJ_SLEEPQ_* flags
	Flags() int
	Name() string
}

// Sobj_t adapts an owner function to Syncobj_i.
type Sobj_t struct {
	name  string
	flags int
	owner func(defs.Wchan_t) *Lwp_t
}

func Mksobj(name string, flags int, owner func(defs.Wchan_t) *Lwp_t) *Sobj_t {
	return &Sobj_t{name: name, flags: flags, owner: owner}
}

func (so *Sobj_t) Owner(wchan defs.Wchan_t) *Lwp_t {
	if so.owner == nil {
		return nil
	}
	return so.owner(wchan)
}

func (so *Sobj_t) Flags() int {
	return so.flags
}

func (so *Sobj_t) Name() string {
	return so.name
}

// Sobj_noowner is for waits with no single owner, like condition variables;
// nothing is lent through it.
var Sobj_noowner = Mksobj("noowner", defs.SOBJ_SLEEPQ_FIFO, nil)
