package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
	"github.com/dmitrijs2005/codeforge/internal/common"
	"github.com/dmitrijs2005/codeforge/internal/logging"
)

const DefaultDebounce = 250 * time.Millisecond

// DraftKey is the storage key of a draft. An empty user means nobody is
// logged in.
func DraftKey(user string, problemID int64, lang string) string {
	if user == "" {
		user = common.Guest
	}
	return fmt.Sprintf("oj:code:%s:%d:%s", user, problemID, lang)
}

type pendingDraft struct {
	code      string
	debouncer *Debouncer
}

// Drafts stores editor code per user, problem and language. Saves are
// debounced per key; Load always sees the latest saved value, written or not.
type Drafts struct {
	store kv.Repository
	delay time.Duration
	log   logging.Logger

	mu      sync.Mutex
	pending map[string]*pendingDraft

	// writeMu orders store writes so a draft write and a starter
	// write-through never interleave.
	writeMu sync.Mutex
}

func NewDrafts(store kv.Repository, delay time.Duration, log logging.Logger) *Drafts {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Drafts{
		store:   store,
		delay:   delay,
		log:     log,
		pending: make(map[string]*pendingDraft),
	}
}

// Load returns the draft for the key, or the language starter when there is
// none yet. The starter is written through so the next Load finds it.
func (d *Drafts) Load(ctx context.Context, user string, problemID int64, lang string) (string, error) {
	key := DraftKey(user, problemID, lang)

	if code, ok := d.pendingCode(key); ok {
		return code, nil
	}

	raw, err := d.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load draft: %w", err)
	}
	if raw != nil {
		return string(raw), nil
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	// a draft may have landed while we were reading
	if code, ok := d.pendingCode(key); ok {
		return code, nil
	}
	raw, err = d.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load draft: %w", err)
	}
	if raw != nil {
		return string(raw), nil
	}

	starter := Starter(lang)
	if err := d.store.Set(ctx, key, []byte(starter)); err != nil {
		return "", fmt.Errorf("store starter: %w", err)
	}
	return starter, nil
}

func (d *Drafts) pendingCode(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		return "", false
	}
	return p.code, true
}

// Save schedules code to be written after the debounce delay. A newer Save
// for the same key replaces it.
func (d *Drafts) Save(user string, problemID int64, lang, code string) {
	key := DraftKey(user, problemID, lang)

	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		p = &pendingDraft{debouncer: NewDebouncer(d.delay)}
		d.pending[key] = p
	}
	p.code = code
	p.debouncer.Trigger(func() { d.write(key, code) })
}

// Reset replaces the draft with the language starter right away.
func (d *Drafts) Reset(ctx context.Context, user string, problemID int64, lang string) (string, error) {
	key := DraftKey(user, problemID, lang)

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	if p, ok := d.pending[key]; ok {
		p.debouncer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	starter := Starter(lang)
	if err := d.store.Set(ctx, key, []byte(starter)); err != nil {
		return "", fmt.Errorf("reset draft: %w", err)
	}
	return starter, nil
}

// write persists code and only then retires the pending entry, so a Load
// running meanwhile still sees the unsaved value. A newer Save keeps its entry.
func (d *Drafts) write(key, code string) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if err := d.store.Set(context.Background(), key, []byte(code)); err != nil {
		d.log.Warn(context.Background(), "failed to save draft", "key", key, "error", err)
		return
	}

	d.mu.Lock()
	if p, ok := d.pending[key]; ok && p.code == code && !p.debouncer.Pending() {
		delete(d.pending, key)
	}
	d.mu.Unlock()
}

// Flush writes every pending draft now.
func (d *Drafts) Flush() {
	for _, deb := range d.snapshot() {
		deb.Flush()
	}
}

// Close drops pending drafts without writing them.
func (d *Drafts) Close() {
	for _, deb := range d.snapshot() {
		deb.Stop()
	}
	d.mu.Lock()
	clear(d.pending)
	d.mu.Unlock()
}

func (d *Drafts) snapshot() []*Debouncer {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Debouncer, 0, len(d.pending))
	for _, p := range d.pending {
		out = append(out, p.debouncer)
	}
	return out
}
