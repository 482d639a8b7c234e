package mgo

import (
	"context"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/tools/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config represents the MongoDB configuration.
type Config struct {
	URI         string
	Database    string
	Username    string
	Password    string
	AuthSource  string
	MaxPoolSize int
	MaxRetry    int
}

func (c *Config) norm() {
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = 20
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
}

type Client struct {
	cli *mongo.Client
	db  *mongo.Database
}

func (c *Client) DB() *mongo.Database { return c.db }

func (c *Client) Close(ctx context.Context) error {
	return c.cli.Disconnect(ctx)
}

// New connects, pings and returns a database handle. Transient connect
// errors are retried with a short pause, the way a gateway node rides out a
// mongo restart during its own boot.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	cfg.norm()
	if cfg.URI == "" {
		return nil, errs.New("mongo uri is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
		})
	}

	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < cfg.MaxRetry; i++ {
		cli, err = connect(ctx, opts)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "failed to connect to MongoDB")
	}

	return &Client{cli: cli, db: cli.Database(cfg.Database)}, nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return cli, nil
}
