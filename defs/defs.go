package defs

type Tid_t int

// scheduling priority; larger values run first.
type Pri_t int

// PRI_NONE marks the absence of an inherited priority.
const PRI_NONE Pri_t = -1

// a wait channel is the address of the contended object.
type Wchan_t uintptr

// turnstile sub-queues
const (
	TS_READER_Q = 0
	TS_WRITER_Q = 1
	TS_NQUEUES  = 2
)

// sync object flags
const (
	// waiters are kept in priority order instead of arrival order
	SOBJ_SLEEPQ_SORTED = 1 << iota
	SOBJ_SLEEPQ_FIFO
)
