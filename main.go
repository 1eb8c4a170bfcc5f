package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"connbag/bag"
	"connbag/bagadmin"
	"connbag/config"
	"connbag/provisioner"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

var (
	configFile  = flag.String("config", "", "path to a yaml config file; if empty, ExampleConfig is used")
	genExample  = flag.String("gen-example", "", "write an example config to this path and exit")
	redisAddr   = flag.String("redis", "", "override config.Redis.Addr")
	httpListen  = flag.String("http", "", "override config.Listen.Http")
	grpcListen  = flag.String("grpc", "", "override config.Listen.Grpc")
	instanceTag = flag.String("instance", "", "this instance's identifier in demand-bus events")
)

func main() {
	flag.Parse()

	if *genExample != "" {
		c := config.ExampleConfig()
		if err := c.WriteToYaml(*genExample); err != nil {
			fmt.Fprintln(os.Stderr, "gen-example:", err)
			os.Exit(1)
		}
		return
	}

	cfg := config.UseConfig()
	*cfg = config.ExampleConfig()
	if *configFile != "" {
		if err := cfg.ReadFromYaml(*configFile); err != nil {
			fmt.Fprintln(os.Stderr, "reading config:", err)
			os.Exit(1)
		}
	}

	overrides := map[string]any{}
	if *redisAddr != "" {
		overrides["Redis"] = map[string]any{"Addr": *redisAddr}
	}
	if *httpListen != "" {
		overrides["Listen"] = map[string]any{"Http": *httpListen}
	}
	if *grpcListen != "" {
		if l, ok := overrides["Listen"].(map[string]any); ok {
			l["Grpc"] = *grpcListen
		} else {
			overrides["Listen"] = map[string]any{"Grpc": *grpcListen}
		}
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		fmt.Fprintln(os.Stderr, "applying overrides:", err)
		os.Exit(1)
	}

	if err := cfg.Check(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	enabled, err := cfg.Provisioner.IsEnabledAndValid()
	if err != nil {
		fmt.Fprintln(os.Stderr, "provisioner config:", err)
		os.Exit(1)
	}

	p := provisioner.NewRedisProvisioner(nil, &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	p.MaxConns = cfg.Provisioner.MaxConns
	p.Source = *instanceTag

	var listener bag.Listener
	if enabled {
		listener = p
	}
	b := bag.New[*provisioner.Conn](listener)
	p.Bag = b

	if cfg.Provisioner.UseDemandBus {
		p.DemandBus = provisioner.NewRedisBus(
			redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}),
			cfg.Provisioner.DemandChannel,
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go p.ListenForSiblingDemand(ctx)
	}

	go func() {
		r := bagadmin.NewHTTPServer(b)
		if err := r.Run(cfg.Listen.Http); err != nil {
			fmt.Fprintln(os.Stderr, "bagadmin http server:", err)
		}
	}()

	lis, err := net.Listen("tcp", cfg.Listen.Grpc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bagadmin grpc listen:", err)
		os.Exit(1)
	}
	s := grpc.NewServer()
	bagadmin.RegisterAdminServer(s, b)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, "bagadmin grpc server:", err)
		os.Exit(1)
	}
}
