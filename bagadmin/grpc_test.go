package bagadmin

import (
	"context"
	"net"
	"testing"

	"connbag/bag"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type grpcTestItem struct {
	bag.Entry
	label string
}

func (i *grpcTestItem) BagEntry() *bag.Entry { return &i.Entry }
func (i *grpcTestItem) String() string       { return i.label }

func newGRPCTestClient(t *testing.T, b *bag.Bag[*grpcTestItem]) *AdminClient {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	RegisterAdminServer(s, b)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &AdminClient{conn: conn}
}

func newGRPCTestBag(t *testing.T) *bag.Bag[*grpcTestItem] {
	t.Helper()
	b := bag.New[*grpcTestItem](nil)
	if err := b.Add(&grpcTestItem{label: "a"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(&grpcTestItem{label: "b"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return b
}

func TestGRPCSize(t *testing.T) {
	b := newGRPCTestBag(t)
	c := newGRPCTestClient(t, b)

	got, err := c.Size(context.Background())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}
}

func TestGRPCCount(t *testing.T) {
	b := newGRPCTestBag(t)
	if _, err := b.Borrow(context.Background(), 0, nil); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	c := newGRPCTestClient(t, b)

	got, err := c.Count(context.Background(), "IN_USE")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 1 {
		t.Fatalf("Count(IN_USE) = %d, want 1", got)
	}
}

func TestGRPCCountRejectsUnknownState(t *testing.T) {
	b := newGRPCTestBag(t)
	c := newGRPCTestClient(t, b)

	if _, err := c.Count(context.Background(), "REMOVED"); err == nil {
		t.Fatal("Count(REMOVED) = nil error, want an error for an invalid state")
	}
}

func TestGRPCValues(t *testing.T) {
	b := newGRPCTestBag(t)
	c := newGRPCTestClient(t, b)

	got, err := c.Values(context.Background(), "NOT_IN_USE")
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Values) = %d, want 2", len(got))
	}
}

func TestGRPCPending(t *testing.T) {
	b := newGRPCTestBag(t)
	c := newGRPCTestClient(t, b)

	got, err := c.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if got != 0 {
		t.Fatalf("Pending() = %d, want 0", got)
	}
}

func TestGRPCDump(t *testing.T) {
	b := newGRPCTestBag(t)
	c := newGRPCTestClient(t, b)

	if err := c.Dump(context.Background()); err != nil {
		t.Fatalf("Dump: %v", err)
	}
}
