package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used when no database is configured and in tests.
type Memory struct {
	mu            sync.RWMutex
	owners        map[string]*Owner
	templates     []*Template
	distributions []*Distribution
	now           func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		owners: make(map[string]*Owner),
		now:    time.Now,
	}
}

func (m *Memory) Close() error { return nil }
func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) CreateOwner(_ context.Context, o *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	for _, existing := range m.owners {
		if existing.Email == o.Email || existing.Username == o.Username {
			return ErrConflict
		}
	}
	assignID(&o.ID)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.now().UTC()
	}
	cp := *o
	m.owners[o.ID] = &cp
	return nil
}

func (m *Memory) GetOwner(_ context.Context, id string) (*Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) GetOwnerByEmail(_ context.Context, email string) (*Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, o := range m.owners {
		if o.Email == email {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteOwner(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[id]; !ok {
		return ErrNotFound
	}
	delete(m.owners, id)

	templates := m.templates[:0]
	for _, t := range m.templates {
		if t.OwnerID != id {
			templates = append(templates, t)
		}
	}
	m.templates = templates

	distributions := m.distributions[:0]
	for _, d := range m.distributions {
		if d.OwnerID != id {
			distributions = append(distributions, d)
		}
	}
	m.distributions = distributions
	return nil
}

func (m *Memory) CreateTemplate(_ context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[t.OwnerID]; !ok {
		return ErrNotFound
	}
	assignID(&t.ID)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now().UTC()
	}
	m.templates = append(m.templates, cloneTemplate(t))
	return nil
}

func (m *Memory) findTemplate(ownerID, id string) *Template {
	for _, t := range m.templates {
		if t.ID == id && t.OwnerID == ownerID {
			return t
		}
	}
	return nil
}

func (m *Memory) GetTemplate(_ context.Context, ownerID, id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := m.findTemplate(ownerID, id)
	if t == nil {
		return nil, ErrNotFound
	}
	return cloneTemplate(t), nil
}

func (m *Memory) ListTemplates(_ context.Context, ownerID string) ([]Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Template
	for i := len(m.templates) - 1; i >= 0; i-- {
		if t := m.templates[i]; t.OwnerID == ownerID {
			out = append(out, *cloneTemplate(t))
		}
	}
	sortNewestFirst(out, func(t Template) time.Time { return t.CreatedAt })
	return out, nil
}

func (m *Memory) CreateDistribution(_ context.Context, d *Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findTemplate(d.OwnerID, d.TemplateID) == nil {
		return ErrNotFound
	}
	assignID(&d.ID)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = m.now().UTC()
	}
	m.distributions = append(m.distributions, cloneDistribution(d))
	return nil
}

func (m *Memory) ownerDistributions(ownerID string, limit int) []Distribution {
	var out []Distribution
	for i := len(m.distributions) - 1; i >= 0; i-- {
		if d := m.distributions[i]; d.OwnerID == ownerID {
			out = append(out, *cloneDistribution(d))
		}
	}
	sortNewestFirst(out, func(d Distribution) time.Time { return d.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *Memory) ListDistributions(_ context.Context, ownerID string, limit int) ([]Distribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	return m.ownerDistributions(ownerID, limit), nil
}

func (m *Memory) RecentActivity(_ context.Context, ownerID string, limit int) ([]Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Activity
	for _, d := range m.ownerDistributions(ownerID, limit) {
		a := Activity{
			DistributionID: d.ID,
			Method:         d.Method,
			Status:         d.Status,
			Timestamp:      d.CreatedAt,
		}
		if d.SentAt != nil {
			a.Timestamp = *d.SentAt
		}
		if t := m.findTemplate(ownerID, d.TemplateID); t != nil {
			a.TemplateTitle = t.Title
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *Memory) Stats(_ context.Context, ownerID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st Stats
	for _, t := range m.templates {
		if t.OwnerID == ownerID {
			st.TemplatesGenerated++
		}
	}
	for _, d := range m.distributions {
		if d.OwnerID != ownerID {
			continue
		}
		st.TotalDistributions++
		st.TotalRecipients += len(d.Recipients)
		if d.Status == StatusSent {
			st.InvitationsSent++
		}
		if d.Method == MethodCalendar {
			st.CalendarEvents++
		}
	}
	return st, nil
}

// sortNewestFirst keeps insertion order (already newest first) for equal timestamps.
func sortNewestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}

// Stored records never share slices or pointers with callers.
func cloneTemplate(t *Template) *Template {
	cp := *t
	cp.Attendees = append([]string(nil), t.Attendees...)
	return &cp
}

func cloneDistribution(d *Distribution) *Distribution {
	cp := *d
	cp.Recipients = append([]Recipient(nil), d.Recipients...)
	if d.SentAt != nil {
		at := *d.SentAt
		cp.SentAt = &at
	}
	return &cp
}
