package waitlist

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultFormTTL = 30 * time.Minute

// FormRegistry keeps server-side form instances keyed by the id rendered into
// the page, so repeated posts of the same form share one state machine.
type FormRegistry struct {
	ttl     time.Duration
	newForm func(id string) *Form

	mu    sync.Mutex
	forms map[string]*registeredForm
	ops   uint64
}

type registeredForm struct {
	form     *Form
	lastSeen time.Time
}

func NewFormRegistry(ttl time.Duration, newForm func(id string) *Form) *FormRegistry {
	if ttl <= 0 {
		ttl = DefaultFormTTL
	}

	return &FormRegistry{
		ttl:     ttl,
		newForm: newForm,
		forms:   make(map[string]*registeredForm),
	}
}

// NewID returns an id for a page render. Nothing is stored until a
// submission arrives for it.
func (r *FormRegistry) NewID() string {
	return uuid.New().String()
}

// Get returns the form for id. Unknown, expired or malformed ids get a new
// form; malformed ones also get a new id.
func (r *FormRegistry) Get(id string) *Form {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	entry, ok := r.forms[id]
	if !ok {
		entry = &registeredForm{form: r.newForm(id)}
		r.forms[id] = entry
	}
	entry.lastSeen = now

	return entry.form
}

func (r *FormRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// sweepLocked drops idle forms every so often. Loading forms are kept until
// their submission resolves.
func (r *FormRegistry) sweepLocked(now time.Time) {
	r.ops++
	if r.ops%256 != 0 {
		return
	}

	cutoff := now.Add(-r.ttl)
	for id, entry := range r.forms {
		if !entry.lastSeen.Before(cutoff) {
			continue
		}
		if _, loading := entry.form.State().(Loading); loading {
			continue
		}
		delete(r.forms, id)
	}
}
