package conn

import (
	"context"
	"database/sql"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// EnvProvider opens connections with the credentials in an Env. It is safe for
// concurrent use.
type EnvProvider struct {
	env           Env
	retries       int
	retryInterval time.Duration
}

// Option configures an EnvProvider.
type Option func(*EnvProvider)

// WithRetry makes a failed connection attempt be retried up to retries times,
// waiting interval between attempts. Errors the engine considers unretryable
// are never retried.
func WithRetry(retries int, interval time.Duration) Option {
	return func(p *EnvProvider) {
		p.retries = retries
		p.retryInterval = interval
	}
}

// NewEnvProvider creates an EnvProvider. By default nothing is retried.
func NewEnvProvider(env Env, opts ...Option) *EnvProvider {
	p := &EnvProvider{env: env}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open implements Provider. The returned connection is verified by a ping.
func (p *EnvProvider) Open(ctx context.Context, side Side, kind Kind) (Conn, error) {
	engine, err := EngineFor(kind)
	if err != nil {
		return nil, &ConnectionError{Side: side, Kind: kind, Cause: err}
	}
	ep, err := p.env.Endpoint(side, engine)
	if err != nil {
		return nil, &ConnectionError{Side: side, Kind: kind, Cause: err}
	}
	connector, err := engine.Connector(ep)
	if err != nil {
		return nil, &ConnectionError{Side: side, Kind: kind, Cause: errors.Annotatef(err, "build connector for %s", ep)}
	}

	db := sql.OpenDB(connector)
	// one item issues one query per side at a time
	db.SetMaxOpenConns(1)
	if err = p.verify(ctx, db, engine); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Side: side, Kind: kind, Cause: errors.Annotatef(err, "connect to %s", ep)}
	}
	util.Logger.Debug("connection opened",
		zap.String("side", string(side)),
		zap.String("kind", string(kind)),
		zap.Stringer("endpoint", ep))
	return Wrap(db, side, kind), nil
}

func (p *EnvProvider) verify(ctx context.Context, db *sql.DB, engine Engine) error {
	for attempt := 0; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if engine.Unretryable(err) {
			err = util.WrapUnretryableError(err)
		}
		if util.IsUnretryableError(err) || attempt >= p.retries {
			return errors.Trace(err)
		}
		util.Logger.Warn("ping database failed, will retry",
			zap.String("kind", string(engine.Kind())),
			zap.Int("attempt", attempt+1),
			zap.Duration("interval", p.retryInterval),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case <-time.After(p.retryInterval):
		}
	}
}
