package machine

import (
	"time"

	"github.com/mna/lumen/lang/value"
)

var vmStartTime = time.Now()

// defineNatives installs the natives available to every script: for
// now, clock(), which reports elapsed seconds since the process started
// (the reference implementation ties it to process start instead of
// wall-clock epoch so timing tests are reproducible across runs).
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, func(argv []value.Value) (value.Value, error) {
		return value.Number(time.Since(vmStartTime).Seconds()), nil
	})
}
