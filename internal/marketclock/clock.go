package marketclock

import (
	"sync"
	"time"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// DateLayout is the YYYYMMDD layout used in state files
const DateLayout = "20060102"

var (
	sessionOpenHour, sessionOpenMin   = 9, 0
	sessionCloseHour, sessionCloseMin = 15, 30
)

// Seoul returns the Asia/Seoul location (고정 KST로 폴백)
func Seoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// KRX is the wall-clock implementation of contracts.MarketClock
// 정규장 09:00 ~ 15:30 (KST)
type KRX struct {
	loc *time.Location
}

// NewKRX creates the KRX session clock
func NewKRX() *KRX {
	return &KRX{loc: Seoul()}
}

func (k *KRX) Now() time.Time {
	return time.Now().In(k.loc)
}

func (k *KRX) SessionOpen() time.Time {
	return at(k.Now(), sessionOpenHour, sessionOpenMin)
}

func (k *KRX) SessionClose() time.Time {
	return at(k.Now(), sessionCloseHour, sessionCloseMin)
}

// Fixed is a settable clock for tests and replays
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) SessionOpen() time.Time {
	return at(f.Now(), sessionOpenHour, sessionOpenMin)
}

func (f *Fixed) SessionClose() time.Time {
	return at(f.Now(), sessionCloseHour, sessionCloseMin)
}

// Set moves the clock to t
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

// Today returns the clock's current date as YYYYMMDD
func Today(c contracts.MarketClock) string {
	return c.Now().Format(DateLayout)
}

// MinutesSinceOpen returns elapsed minutes since today's open (negative before open)
func MinutesSinceOpen(c contracts.MarketClock) float64 {
	return c.Now().Sub(c.SessionOpen()).Minutes()
}

// ElapsedRatio returns the elapsed fraction of today's session, capped at 1.
// 장 시작 전이거나 정각이면 0 이하
func ElapsedRatio(c contracts.MarketClock) float64 {
	open, close := c.SessionOpen(), c.SessionClose()
	total := close.Sub(open)
	if total <= 0 {
		return 0
	}
	ratio := float64(c.Now().Sub(open)) / float64(total)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// IsTradingDay reports whether t falls on a weekday
// TODO: KRX 휴장일 캘린더 연동 (현재는 주말만 제외)
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsSessionOpen reports whether the regular session is in progress
func IsSessionOpen(c contracts.MarketClock) bool {
	now := c.Now()
	if !IsTradingDay(now) {
		return false
	}
	return !now.Before(c.SessionOpen()) && now.Before(c.SessionClose())
}

// PreviousDate returns the calendar day before date (YYYYMMDD)
func PreviousDate(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), nil
}
