package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_WrapsCause(t *testing.T) {
	err := error(&Error{Op: OpHGetAll, Err: context.DeadlineExceeded})

	if err.Error() != "HGETALL: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is lost the cause")
	}
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpHGetAll {
		t.Errorf("errors.As = %v", dbErr)
	}
}
