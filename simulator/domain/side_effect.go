package domain

import "fmt"

// RunSideEffect executes a side effect that must never stop the simulation,
// such as rendering to the console. A panic raised by fn is logged under the
// given name and returned as an error.
func RunSideEffect(name string, fn func(), logger Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s panicked: %v", name, rec)
			logger.Error("%s panicked: %v", name, rec)
		}
	}()
	fn()
	return nil
}
