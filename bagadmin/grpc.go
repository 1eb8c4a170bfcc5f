package bagadmin

import (
	"context"
	"fmt"

	"connbag/bag"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// serviceName is the gRPC service name under which RegisterAdminServer
// registers its methods, and that AdminClient dials against. No .proto
// is compiled here: messages are the library's own pre-generated
// structpb.Struct/emptypb.Empty rather than a bespoke generated type.
const serviceName = "bagadmin.Admin"

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

type adminServer[T bag.Item] struct {
	bag *bag.Bag[T]
}

// RegisterAdminServer registers the read-only Admin service against
// s, backed by b. Since serviceName is fixed, at most one bag can be
// registered per *grpc.Server; serving several bags needs one
// *grpc.Server each.
func RegisterAdminServer[T bag.Item](s *grpc.Server, b *bag.Bag[T]) {
	as := &adminServer[T]{bag: b}

	sd := &grpc.ServiceDesc{
		ServiceName: serviceName,
		Methods: []grpc.MethodDesc{
			{MethodName: "Size", Handler: as.sizeHandler},
			{MethodName: "Pending", Handler: as.pendingHandler},
			{MethodName: "Count", Handler: as.countHandler},
			{MethodName: "Values", Handler: as.valuesHandler},
			{MethodName: "Dump", Handler: as.dumpHandler},
		},
		Metadata: "bagadmin.proto",
	}
	s.RegisterService(sd, nil)
}

func (s *adminServer[T]) sizeHandler(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(emptypb.Empty)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return structpb.NewStruct(map[string]any{"size": float64(s.bag.Size())})
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod("Size")}, handler)
}

func (s *adminServer[T]) pendingHandler(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(emptypb.Empty)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return structpb.NewStruct(map[string]any{"pending": float64(s.bag.GetPendingQueue())})
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod("Pending")}, handler)
}

func (s *adminServer[T]) countHandler(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		state, err := parseState(req.(*structpb.Struct).GetFields()["state"].GetStringValue())
		if err != nil {
			return nil, err
		}
		return structpb.NewStruct(map[string]any{"count": float64(s.bag.GetCount(state))})
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod("Count")}, handler)
}

func (s *adminServer[T]) valuesHandler(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		state, err := parseState(req.(*structpb.Struct).GetFields()["state"].GetStringValue())
		if err != nil {
			return nil, err
		}
		items := s.bag.Values(state)
		values := make([]any, len(items))
		for i, item := range items {
			values[i] = fmt.Sprintf("%v", item)
		}
		return structpb.NewStruct(map[string]any{"values": values})
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod("Values")}, handler)
}

func (s *adminServer[T]) dumpHandler(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(emptypb.Empty)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		s.bag.DumpState()
		return &emptypb.Empty{}, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod("Dump")}, handler)
}

// AdminClient is a thin gRPC client for the Admin service, dialed
// without a generated stub (see serviceName).
type AdminClient struct {
	conn *grpc.ClientConn
}

// DialAdminClient dials addr with insecure transport credentials.
func DialAdminClient(addr string) (*AdminClient, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("bagadmin: dial %s: %w", addr, err)
	}
	return &AdminClient{conn: conn}, nil
}

func (c *AdminClient) Close() error {
	return c.conn.Close()
}

func (c *AdminClient) Size(ctx context.Context) (int64, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("Size"), &emptypb.Empty{}, resp); err != nil {
		return 0, err
	}
	return int64(resp.GetFields()["size"].GetNumberValue()), nil
}

func (c *AdminClient) Pending(ctx context.Context) (int64, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("Pending"), &emptypb.Empty{}, resp); err != nil {
		return 0, err
	}
	return int64(resp.GetFields()["pending"].GetNumberValue()), nil
}

func (c *AdminClient) Count(ctx context.Context, state string) (int64, error) {
	req, err := structpb.NewStruct(map[string]any{"state": state})
	if err != nil {
		return 0, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("Count"), req, resp); err != nil {
		return 0, err
	}
	return int64(resp.GetFields()["count"].GetNumberValue()), nil
}

func (c *AdminClient) Values(ctx context.Context, state string) ([]string, error) {
	req, err := structpb.NewStruct(map[string]any{"state": state})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("Values"), req, resp); err != nil {
		return nil, err
	}
	raw := resp.GetFields()["values"].GetListValue().GetValues()
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = v.GetStringValue()
	}
	return values, nil
}

func (c *AdminClient) Dump(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Dump"), &emptypb.Empty{}, &emptypb.Empty{})
}
