package interpreter

import (
	"strconv"
	"strings"
)

// Output is the ordered list of values printed by a run.
type Output []int64

// String renders one value per line
func (o Output) String() string {
	var b strings.Builder
	for _, v := range o {
		b.WriteString(strconv.FormatInt(v, 10))
		b.WriteByte('\n')
	}
	return b.String()
}
