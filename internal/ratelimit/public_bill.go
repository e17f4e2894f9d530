package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/gstbill/internal/config"
)

const keyPublicBill = "gstbill:public_bill:%s"

// PublicBillLimiter throttles anonymous reads of shared bills per client IP.
// A nil limiter allows everything.
type PublicBillLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicBillLimiter(cfg config.Config, bucket *TokenBucket) (*PublicBillLimiter, error) {
	if bucket == nil {
		return nil, nil
	}
	limit := cfg.RateLimit
	if err := validateLimit(limit.PublicBillRate, limit.PublicBillBurst); err != nil {
		return nil, fmt.Errorf("public bill rate limit: %w", err)
	}
	return &PublicBillLimiter{
		bucket: bucket,
		rate:   limit.PublicBillRate,
		burst:  limit.PublicBillBurst,
	}, nil
}

func (l *PublicBillLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PublicBillLimiter) Allow(ctx context.Context, clientIP string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		ip = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPublicBill, ip), l.rate, l.burst)
}
