package bag

import "context"

// Listener is the bag's external state-listener collaborator. It is
// informed when a Borrow's shared scan failed to find an idle item,
// and is expected to attempt to add a new one — typically by
// constructing a fresh resource and calling Bag.Add.
//
// AddBagItem must return promptly: Borrow invokes it synchronously, on
// the borrowing goroutine, and does not wait for its effect. A slow or
// blocking listener starves that borrower's remaining timeout budget;
// that is a caller responsibility, not something the bag guards
// against.
//
// A nil Listener is legal: Borrow simply skips the upcall.
type Listener interface {
	AddBagItem(ctx context.Context)
}
