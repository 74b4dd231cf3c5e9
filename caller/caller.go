package caller

import "fmt"
import "runtime"

// returns the call path starting start frames above Callerstr's caller.
func Callerstr(start int) string {
	i := start + 1
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}

func Callerdump(start int) {
	fmt.Printf("%s", Callerstr(start+1))
}
