package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	newOwner := func(t *testing.T, s Store, name string) *Owner {
		t.Helper()
		o := &Owner{Username: name + "-" + uuid.NewString()[:8], Email: name + "-" + uuid.NewString()[:8] + "@Example.com", PasswordHash: "hash"}
		require.NoError(t, s.CreateOwner(ctx, o))
		return o
	}
	newTemplate := func(t *testing.T, s Store, owner *Owner, title string) *Template {
		t.Helper()
		tpl := &Template{
			OwnerID:      owner.ID,
			Title:        title,
			Content:      "<!DOCTYPE html><p>" + title + "</p>",
			Source:       "fallback",
			MeetingTopic: title,
			SpeakerName:  "Dana",
			MeetingDate:  "2025-03-10",
			MeetingTime:  "14:00",
			Attendees:    []string{"Ana", "Ben"},
			Priority:     "high",
		}
		require.NoError(t, s.CreateTemplate(ctx, tpl))
		return tpl
	}

	t.Run("owners", func(t *testing.T) {
		s := newStore(t)
		o := newOwner(t, s, "dana")
		assert.NotEmpty(t, o.ID)
		assert.Contains(t, o.Email, "@example.com")

		got, err := s.GetOwnerByEmail(ctx, "  "+o.Email+" ")
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		dup := &Owner{Username: "other", Email: o.Email, PasswordHash: "x"}
		assert.ErrorIs(t, s.CreateOwner(ctx, dup), ErrConflict)

		_, err = s.GetOwner(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetOwnerByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("templates are owner scoped", func(t *testing.T) {
		s := newStore(t)
		alice := newOwner(t, s, "alice")
		bob := newOwner(t, s, "bob")
		tpl := newTemplate(t, s, alice, "Q3 Planning")

		got, err := s.GetTemplate(ctx, alice.ID, tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "Q3 Planning", got.Title)
		assert.Equal(t, []string{"Ana", "Ben"}, got.Attendees)

		_, err = s.GetTemplate(ctx, bob.ID, tpl.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetTemplate(ctx, alice.ID, "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := s.ListTemplates(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("templates newest first", func(t *testing.T) {
		s := newStore(t)
		o := newOwner(t, s, "dana")
		first := &Template{OwnerID: o.ID, Title: "first", Content: "<p>", MeetingTopic: "first", SpeakerName: "x",
			MeetingDate: "2025-01-01", MeetingTime: "10:00", CreatedAt: time.Now().Add(-time.Hour).UTC()}
		require.NoError(t, s.CreateTemplate(ctx, first))
		newTemplate(t, s, o, "second")

		list, err := s.ListTemplates(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "second", list[0].Title)
		assert.Equal(t, "first", list[1].Title)
	})

	t.Run("distributions and stats", func(t *testing.T) {
		s := newStore(t)
		o := newOwner(t, s, "dana")
		other := newOwner(t, s, "eve")
		tpl := newTemplate(t, s, o, "Q3 Planning")
		now := time.Now().UTC()

		sent := &Distribution{
			OwnerID: o.ID, TemplateID: tpl.ID, Method: MethodEmail, Status: StatusSent, SentAt: &now,
			Recipients: []Recipient{{Email: "a@example.com"}, {Email: "b@example.com"}, {Email: "c@example.com"}},
		}
		require.NoError(t, s.CreateDistribution(ctx, sent))
		failed := &Distribution{
			OwnerID: o.ID, TemplateID: tpl.ID, Method: MethodCalendar, Status: StatusFailed, SentAt: &now,
			Recipients: []Recipient{{Email: "d@example.com"}},
		}
		require.NoError(t, s.CreateDistribution(ctx, failed))

		foreign := &Distribution{OwnerID: other.ID, TemplateID: tpl.ID, Method: MethodEmail, Status: StatusSent}
		assert.ErrorIs(t, s.CreateDistribution(ctx, foreign), ErrNotFound)

		st, err := s.Stats(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, Stats{
			TemplatesGenerated: 1,
			InvitationsSent:    1,
			TotalRecipients:    4,
			CalendarEvents:     1,
			TotalDistributions: 2,
		}, st)

		list, err := s.ListDistributions(ctx, o.ID, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, d := range list {
			if d.Method == MethodEmail {
				assert.Len(t, d.Recipients, 3)
				assert.Equal(t, "a@example.com", d.Recipients[0].Email)
			}
		}

		act, err := s.RecentActivity(ctx, o.ID, 5)
		require.NoError(t, err)
		require.Len(t, act, 2)
		assert.Equal(t, "Q3 Planning", act[0].TemplateTitle)

		empty, err := s.Stats(ctx, other.ID)
		require.NoError(t, err)
		assert.Zero(t, empty)
	})

	t.Run("delete owner cascades", func(t *testing.T) {
		s := newStore(t)
		o := newOwner(t, s, "dana")
		keep := newOwner(t, s, "kim")
		tpl := newTemplate(t, s, o, "Gone")
		kept := newTemplate(t, s, keep, "Stays")
		require.NoError(t, s.CreateDistribution(ctx, &Distribution{
			OwnerID: o.ID, TemplateID: tpl.ID, Method: MethodMessaging, Status: StatusSent,
			Recipients: []Recipient{{Phone: "+15551234567"}},
		}))

		require.NoError(t, s.DeleteOwner(ctx, o.ID))

		_, err := s.GetOwner(ctx, o.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetTemplate(ctx, o.ID, tpl.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		dists, err := s.ListDistributions(ctx, o.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, dists)

		_, err = s.GetTemplate(ctx, keep.ID, kept.ID)
		assert.NoError(t, err)
		assert.ErrorIs(t, s.DeleteOwner(ctx, o.ID), ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	o := &Owner{Username: "dana", Email: "dana@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateOwner(ctx, o))
	tpl := &Template{OwnerID: o.ID, Title: "Sync", Attendees: []string{"Ana", "Ben"}}
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	got, err := s.GetTemplate(ctx, o.ID, tpl.ID)
	require.NoError(t, err)
	got.Attendees[0] = "Mallory"
	list, err := s.ListTemplates(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list[0].Attendees[1] = "Eve"

	again, err := s.GetTemplate(ctx, o.ID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Ben"}, again.Attendees)

	d := &Distribution{OwnerID: o.ID, TemplateID: tpl.ID, Method: MethodEmail, Recipients: []Recipient{{Email: "a@example.com"}}, Status: StatusSent}
	require.NoError(t, s.CreateDistribution(ctx, d))
	dists, err := s.ListDistributions(ctx, o.ID, 0)
	require.NoError(t, err)
	require.Len(t, dists, 1)
	dists[0].Recipients[0].Email = "changed@example.com"

	dists, err = s.ListDistributions(ctx, o.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", dists[0].Recipients[0].Email)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	runStoreSuite(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := NewPostgres(ctx, dsn, 4, 2)
		require.NoError(t, err)
		require.NoError(t, s.Migrate(ctx))
		t.Cleanup(func() { s.Close() })
		return s
	})
}
