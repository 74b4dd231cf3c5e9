package stats

import "reflect"
import "sync/atomic"
import "strconv"
import "strings"
import "time"
import "unsafe"

const Stats = true
const Timing = true

type Counter_t int64
type Nsecs_t int64

func (c *Counter_t) Inc() {
	if Stats {
		n := (*int64)(unsafe.Pointer(c))
		atomic.AddInt64(n, 1)
	}
}

func (c *Counter_t) Load() int64 {
	n := (*int64)(unsafe.Pointer(c))
	return atomic.LoadInt64(n)
}

// adds the time elapsed since start
func (c *Nsecs_t) Add(start time.Time) {
	if Timing {
		n := (*int64)(unsafe.Pointer(c))
		atomic.AddInt64(n, int64(time.Since(start)))
	}
}

func (c *Nsecs_t) Load() int64 {
	n := (*int64)(unsafe.Pointer(c))
	return atomic.LoadInt64(n)
}

// renders every Counter_t and Nsecs_t field of the struct st, or a pointer
// to one.
func Stats2String(st interface{}) string {
	if !Stats {
		return ""
	}
	v := reflect.ValueOf(st)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	s := ""
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		if strings.HasSuffix(t, "Counter_t") {
			n := v.Field(i).Int()
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(n, 10)
		}
		if strings.HasSuffix(t, "Nsecs_t") {
			n := v.Field(i).Int()
			s += "\n\t#" + v.Type().Field(i).Name + ": " + time.Duration(n).String()
		}

	}
	return s + "\n"
}
