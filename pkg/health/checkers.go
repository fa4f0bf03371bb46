package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than threshold goroutines are running.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// FlagCheck fails with err while ok reports false.
func FlagCheck(ok func() bool, err error) CheckFunc {
	return func(_ context.Context) error {
		if !ok() {
			return err
		}
		return nil
	}
}
