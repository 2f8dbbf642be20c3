package chat

import (
	"time"

	"kama_group_client/internal/config"
	"kama_group_client/pkg/constants"
)

// RetryPolicy 断线重连策略
// MaxAttempts 为 0 表示无限重试；BackoffFactor <= 1 表示固定间隔
type RetryPolicy struct {
	Delay         time.Duration
	MaxAttempts   int
	BackoffFactor float64
	MaxDelay      time.Duration
}

// DefaultRetryPolicy 每 5 秒重试一次，不限次数
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: constants.RECONNECT_DELAY}
}

// RetryPolicyFromConfig 从 chatConfig 构造重连策略
func RetryPolicyFromConfig(conf config.ChatConfig) RetryPolicy {
	return RetryPolicy{
		Delay:         config.Seconds(conf.ReconnectDelay),
		MaxAttempts:   conf.MaxReconnectAttempts,
		BackoffFactor: conf.BackoffFactor,
		MaxDelay:      config.Seconds(conf.MaxReconnectDelay),
	}
}

// Allow 第 attempt 次重连（从 1 开始）是否允许
func (p RetryPolicy) Allow(attempt int) bool {
	return p.MaxAttempts <= 0 || attempt <= p.MaxAttempts
}

// Backoff 第 attempt 次重连前的等待时间
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.Delay
	if d <= 0 {
		d = constants.RECONNECT_DELAY
	}
	if p.BackoffFactor > 1 {
		for i := 1; i < attempt; i++ {
			d = time.Duration(float64(d) * p.BackoffFactor)
			if p.MaxDelay > 0 && d >= p.MaxDelay {
				return p.MaxDelay
			}
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
