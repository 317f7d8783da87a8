package metrics

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

type pushOpts struct {
	retries int
	delay   time.Duration
	logger  *zap.Logger
}

type PushOpt func(*pushOpts)

// WithRetries retries a failed push up to retries times, waiting between
// delay and twice delay before each attempt.
func WithRetries(retries int, delay time.Duration) PushOpt {
	return func(o *pushOpts) {
		o.retries = retries
		o.delay = delay
	}
}

func WithPushLogger(logger *zap.Logger) PushOpt {
	return func(o *pushOpts) {
		o.logger = logger
	}
}

// A wrapper around zap.Logger to make it compatible with
// retryablehttp.LeveledLogger interface.
type retryableHTTPLogger struct {
	inner *zap.Logger
}

func (r retryableHTTPLogger) Error(format string, args ...any) {
	r.inner.Sugar().Errorw(format, args...)
}

func (r retryableHTTPLogger) Info(format string, args ...any) {
	r.inner.Sugar().Infow(format, args...)
}

func (r retryableHTTPLogger) Warn(format string, args ...any) {
	r.inner.Sugar().Warnw(format, args...)
}

func (r retryableHTTPLogger) Debug(format string, args ...any) {
	r.inner.Sugar().Debugw(format, args...)
}

// Push sends everything registered in the default registry to a Pushgateway at url
// under job.
func Push(url, job string, grouping map[string]string, opts ...PushOpt) error {
	o := pushOpts{retries: 3, delay: time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	client := retryablehttp.NewClient()
	client.RetryMax = o.retries
	client.RetryWaitMin = o.delay
	client.RetryWaitMax = 2 * o.delay
	client.Backoff = retryablehttp.LinearJitterBackoff
	client.Logger = retryableHTTPLogger{inner: o.logger}

	pusher := push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		Client(client.StandardClient())
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
