package defs

type Err_t int

const (
	EAGAIN      Err_t = 11
	EWOULDBLOCK       = EAGAIN
)
