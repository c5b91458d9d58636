package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy
// ⭐ SSOT: 엔진 오류 분류
var (
	// ErrUpstreamUnavailable: 외부 API 실패 (전송 오류, 비정상 응답)
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDataInsufficient: 봉 개수 부족, 필수 필드 누락
	ErrDataInsufficient = errors.New("data insufficient")
	// ErrFilteredOut: 품질 필터 미통과
	ErrFilteredOut = errors.New("filtered out")
	// ErrMalformedPayload: 응답 형태를 해석할 수 없음
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrPersistence: 상태 파일 읽기/쓰기 실패
	ErrPersistence = errors.New("persistence failure")
)

// RejectReason is a stable machine-readable rejection code
type RejectReason string

const (
	RejectBarsFetch        RejectReason = "bars_fetch"
	RejectInsufficientBars RejectReason = "insufficient_bars"
	RejectLowTradingValue  RejectReason = "low_trading_value"
	RejectTrend            RejectReason = "trend"
	RejectQuoteFetch       RejectReason = "quote_fetch"
	RejectFar52WHigh       RejectReason = "far_from_52w_high"
	RejectBollinger        RejectReason = "bollinger"
	RejectMarketCap        RejectReason = "market_cap"
	RejectExcludedName     RejectReason = "excluded_name"
)

// Rejection explains why a candidate was dropped from a funnel stage
type Rejection struct {
	Code   string
	Reason RejectReason
	Detail string
	Err    error // ErrFilteredOut / ErrDataInsufficient / ErrUpstreamUnavailable
}

// Reject builds a Rejection
func Reject(code string, reason RejectReason, kind error, format string, args ...interface{}) *Rejection {
	return &Rejection{
		Code:   code,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
		Err:    kind,
	}
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected (%s): %s", r.Code, r.Reason, r.Detail)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// AsRejection extracts a Rejection from err
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
