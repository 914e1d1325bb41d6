package common

import (
	"context"
	"testing"
	"time"
)

func TestRecoverPanic(t *testing.T) {
	ctx := context.Background()

	t.Run("正常执行不会panic", func(t *testing.T) {
		defer RecoverPanic(ctx, "test-normal")
		_ = 1 + 1
	})

	t.Run("捕获panic", func(t *testing.T) {
		recovered := make(chan bool, 1)
		func() {
			defer func() {
				RecoverPanic(ctx, "test-panic")
				recovered <- true
			}()
			defer RecoverPanic(ctx, "inner")
			panic("test panic")
		}()

		select {
		case <-recovered:
		default:
			t.Error("Expected panic to be recovered")
		}
	})
}

func TestSafeGo(t *testing.T) {
	ctx := context.Background()

	t.Run("正常goroutine执行", func(t *testing.T) {
		done := make(chan bool, 1)
		SafeGo(ctx, "test-normal-goroutine", func() {
			done <- true
		})

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Error("Goroutine did not complete in time")
		}
	})

	t.Run("goroutine中panic被捕获", func(t *testing.T) {
		done := make(chan bool, 1)
		SafeGo(ctx, "test-panic-goroutine", func() {
			defer func() {
				done <- true
			}()
			panic("intentional panic")
		})

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Error("Goroutine did not complete in time")
		}
	})
}
