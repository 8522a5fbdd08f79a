// README: Concurrency tests for the take-once guarantee.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"revline/internal/types"
)

func opID(i int) types.ID { return types.ID(fmt.Sprintf("op%d", i)) }

// TestConcurrentTakeSameOrder fires N operators at one pending order;
// exactly one take must win and the rest must see AlreadyAssigned.
func TestConcurrentTakeSameOrder(t *testing.T) {
	svc, _ := newTestService(t, validGate())
	ctx := context.Background()
	o := mustCreate(t, svc, "c1", "v1")

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = svc.Take(ctx, o.ID, opID(i))
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	var winner int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
			winner = i
		case errors.Is(err, ErrAlreadyAssigned):
		default:
			t.Fatalf("worker %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful take, got %d", wins)
	}

	got := mustGet(t, svc, o.ID)
	if got.OperatorID == nil || *got.OperatorID != opID(winner) {
		t.Fatalf("operator is %v, want winner %s", got.OperatorID, opID(winner))
	}
	if got.Status != StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got.Status)
	}

	entries, _ := svc.store.History(ctx, o.ID)
	if len(entries) != 1 {
		t.Fatalf("losing takes wrote history: %d entries", len(entries))
	}
}

// TestConcurrentTakeVsForcedStart races a take against an admin status
// change on the same pending order; at most one side may land.
func TestConcurrentTakeVsForcedStart(t *testing.T) {
	svc, _ := newTestService(t, validGate())
	ctx := context.Background()
	o := mustCreate(t, svc, "c1", "v1")

	var wg sync.WaitGroup
	var takeErr, changeErr error
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		takeErr = svc.Take(ctx, o.ID, "op1")
	}()
	go func() {
		defer wg.Done()
		<-start
		changeErr = svc.ChangeStatus(ctx, ChangeStatusCommand{
			OrderID: o.ID, NewStatus: StatusInProgress, CallerID: "admin1",
		})
	}()
	close(start)
	wg.Wait()

	wins := 0
	if takeErr == nil {
		wins++
	} else if !errors.Is(takeErr, ErrAlreadyAssigned) && !errors.Is(takeErr, ErrInvalidTransition) {
		t.Fatalf("take: unexpected error %v", takeErr)
	}
	if changeErr == nil {
		wins++
	} else if !errors.Is(changeErr, ErrConflict) && !errors.Is(changeErr, ErrInvalidTransition) {
		t.Fatalf("change: unexpected error %v", changeErr)
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}

	got := mustGet(t, svc, o.ID)
	if got.Status != StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got.Status)
	}
	entries, _ := svc.store.History(ctx, o.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
}
