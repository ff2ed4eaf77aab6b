package workspace

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
)

const (
	SplitKey     = "oj:split:leftPct"
	MinSplit     = 28.0
	MaxSplit     = 55.0
	DefaultSplit = 38.0
)

// Layout persists the width of the statement pane, in percent.
type Layout struct {
	store kv.Repository
}

func NewLayout(store kv.Repository) *Layout {
	return &Layout{store: store}
}

// ClampSplit bounds pct to [MinSplit, MaxSplit].
func ClampSplit(pct float64) float64 {
	return math.Max(MinSplit, math.Min(MaxSplit, pct))
}

// LeftPct returns the stored ratio, or DefaultSplit when it is missing,
// unreadable or not positive.
func (l *Layout) LeftPct(ctx context.Context) (float64, error) {
	raw, err := l.store.Get(ctx, SplitKey)
	if err != nil {
		return DefaultSplit, fmt.Errorf("load layout: %w", err)
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) || pct <= 0 {
		return DefaultSplit, nil
	}
	return ClampSplit(pct), nil
}

// SetLeftPct clamps and stores pct, returning the stored value.
func (l *Layout) SetLeftPct(ctx context.Context, pct float64) (float64, error) {
	if math.IsNaN(pct) {
		pct = DefaultSplit
	}
	pct = ClampSplit(pct)
	if err := l.store.Set(ctx, SplitKey, []byte(strconv.FormatFloat(pct, 'f', -1, 64))); err != nil {
		return pct, fmt.Errorf("save layout: %w", err)
	}
	return pct, nil
}
