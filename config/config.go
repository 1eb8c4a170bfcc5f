package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/cdfmlr/ellipsis"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// XXX: 懒得写默认值了，就务必全部填写吧
// XXX: viper 也感觉太重了，就只支持 yaml 吧

type config struct {
	Redis       RedisConfig       // 为 provisioner 拨号用的 Redis 连接信息
	Provisioner ProvisionerConfig // 按需供给新连接的策略
	Listen      ListenConfig      // bagadmin 监听的地址
	BorrowWait  int               // Borrow 默认等待秒数

	// ⬇️ 杂项
	LogLevel string // debug / info / warn / error
}

// RedisConfig 连接池中每个 provisioner.Conn 背后拨号的 Redis 服务器。
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// ProvisionerConfig 按需供给新连接的策略。
type ProvisionerConfig struct {
	MaxConns      int    // 软上限：超过后 AddBagItem 不再拨新连接，只记日志
	UseDemandBus  bool   // 是否通过 pubsub 把供给需求广播给同伴实例
	DemandChannel string // UseDemandBus 为 true 时使用的频道名
	Disabled      bool
}

func (c *ProvisionerConfig) IsEnabledAndValid() (enabled bool, err error) {
	if c.Disabled {
		return false, nil
	}
	enabled = true
	if c.UseDemandBus && c.DemandChannel == "" {
		err = errors.New("provisioner: demand bus enabled but channel is empty")
	}
	return enabled, err
}

// ListenConfig bagadmin 监听的一些地址。
type ListenConfig struct {
	Http string // HTTP 只读introspection 服务地址
	Grpc string // gRPC 只读introspection 服务地址
}

func (c *config) Read(src io.Reader) error {
	return yaml.NewDecoder(src).Decode(&c)
}

func (c *config) Write(dst io.Writer) error {
	return yaml.NewEncoder(dst).Encode(&c)
}

// DesensitizedCopy desensitize the config.
// Returns a pointer to the desensitized config copy.
//
// If it's failed to make it, it panics.
//
// Avoid keys being printed to the log.
func (c *config) DesensitizedCopy() *config {
	var cCopy config

	// deep copy
	buf := bytes.NewBuffer(nil)
	if err := yaml.NewEncoder(buf).Encode(&c); err != nil {
		panic(err)
	}
	if err := yaml.NewDecoder(buf).Decode(&cCopy); err != nil {
		panic(err)
	}

	cCopy.Redis.Password = ellipsis.Centering(cCopy.Redis.Password, 3)

	return &cCopy
}

// ReadFromYaml 读取配置文件
func (c *config) ReadFromYaml(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Read(f)
}

// WriteToYaml 写入配置文件
func (c *config) WriteToYaml(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Write(f)
}

// ApplyOverrides merges a generic map of CLI/env-sourced overrides onto
// the already-loaded config, e.g. {"Redis": {"Addr": "localhost:6379"}}.
// Unknown keys are ignored; this is a merge, not a validated schema.
func (c *config) ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(overrides)
}

// Check 检查配置是否合法
func (c *config) Check() error {
	if c.Redis.Addr == "" {
		return errors.New("config: redis.addr is empty")
	}
	if _, err := c.Provisioner.IsEnabledAndValid(); err != nil {
		return err
	}
	return nil
}

// GetBorrowWait is a shorthand for:
//
//	time.Duration(c.BorrowWait) * time.Second
func (c *config) GetBorrowWait() time.Duration {
	return time.Duration(c.BorrowWait) * time.Second
}

var configInstance = config{}

func UseConfig() *config {
	return &configInstance
}

// ExampleConfig 会生成一个示例配置，返回生成的配置。
func ExampleConfig() config {
	c := config{
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Provisioner: ProvisionerConfig{
			MaxConns:      32,
			UseDemandBus:  true,
			DemandChannel: "bag:demand",
		},
		Listen: ListenConfig{
			Http: "0.0.0.0:8080",
			Grpc: "0.0.0.0:9090",
		},
		BorrowWait: 5,
		LogLevel:   "info",
	}

	return c
}
