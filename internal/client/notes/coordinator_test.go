package notes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"goggins/internal/client/gateway"
	"goggins/internal/notes/models"
)

type fakeGateway struct {
	mu       sync.Mutex
	listFn   func(ctx context.Context) ([]models.Note, error)
	createFn func(ctx context.Context, title, content string) (models.Note, error)
	updateFn func(ctx context.Context, noteID, title, content string) error
	deleteFn func(ctx context.Context, noteID string) error
	calls    int
}

func (f *fakeGateway) bump() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeGateway) ListNotes(ctx context.Context) ([]models.Note, error) {
	f.bump()
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f *fakeGateway) CreateNote(ctx context.Context, title, content string) (models.Note, error) {
	f.bump()
	if f.createFn == nil {
		return models.Note{ID: uuid.New(), Title: title, Content: content, CreatedAt: time.Now().UTC()}, nil
	}
	return f.createFn(ctx, title, content)
}

func (f *fakeGateway) UpdateNote(ctx context.Context, noteID, title, content string) error {
	f.bump()
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, noteID, title, content)
}

func (f *fakeGateway) SoftDeleteNote(ctx context.Context, noteID string) error {
	f.bump()
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, noteID)
}

type CoordinatorSuite struct {
	suite.Suite
	ctx context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupSuite() {
	s.ctx = context.Background()
}

func note(title, content string) models.Note {
	return models.Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *CoordinatorSuite) loaded(list ...models.Note) (*fakeGateway, *Coordinator) {
	gw := &fakeGateway{
		listFn: func(context.Context) ([]models.Note, error) { return list, nil },
	}
	c := New(gw)
	require.NoError(s.T(), c.Load(s.ctx))
	return gw, c
}

func (s *CoordinatorSuite) TestLoad() {
	s.Run("soft-deleted notes are evicted at load", func() {
		a := note("a", "alpha")
		b := note("b", "beta")
		b.IsDeleted = true
		_, c := s.loaded(a, b)

		visible := c.VisibleNotes()

		require.Len(s.T(), visible, 1)
		assert.Equal(s.T(), a.ID, visible[0].ID)
	})

	s.Run("server order is preserved, no client-side sort", func() {
		n1 := note("zebra", "z")
		n2 := note("apple", "a")
		_, c := s.loaded(n1, n2)

		visible := c.VisibleNotes()

		require.Len(s.T(), visible, 2)
		assert.Equal(s.T(), "zebra", visible[0].Title)
		assert.Equal(s.T(), "apple", visible[1].Title)
	})

	s.Run("load failure leaves the cache untouched", func() {
		gw, c := s.loaded(note("keep", "me"))
		gw.listFn = func(context.Context) ([]models.Note, error) {
			return nil, &gateway.Error{Kind: gateway.KindTransportFailure, Message: "Something went wrong. Please try again."}
		}

		require.Error(s.T(), c.Load(s.ctx))
		assert.Len(s.T(), c.VisibleNotes(), 1)
	})
}

func (s *CoordinatorSuite) TestSearch() {
	s.Run("query filters case-insensitively over title and content", func() {
		_, c := s.loaded(note("Groceries", "milk and eggs"), note("Plan", "Ship v1"), note("Ideas", "ship faster"))

		c.SetQuery("SHIP")

		visible := c.VisibleNotes()
		require.Len(s.T(), visible, 2)
		assert.Equal(s.T(), "Plan", visible[0].Title)
		assert.Equal(s.T(), "Ideas", visible[1].Title)

		c.SetQuery("")
		assert.Len(s.T(), c.VisibleNotes(), 3)
	})
}

func (s *CoordinatorSuite) TestCreate() {
	s.Run("empty title never issues a network request", func() {
		gw, c := s.loaded()
		before := gw.callCount()

		_, err := c.Create(s.ctx, "", "x")

		require.Error(s.T(), err)
		assert.Equal(s.T(), gateway.KindValidation, gateway.KindOf(err))
		assert.Equal(s.T(), before, gw.callCount())
		assert.Empty(s.T(), c.VisibleNotes())
	})

	s.Run("whitespace-only content is rejected the same way", func() {
		gw, c := s.loaded()
		before := gw.callCount()

		_, err := c.Create(s.ctx, "title", "   ")

		require.Error(s.T(), err)
		assert.Equal(s.T(), before, gw.callCount())
	})

	s.Run("success prepends the canonical server record and closes the create surface", func() {
		existing := note("older", "note")
		created := models.Note{
			ID:        uuid.New(),
			Title:     "Plan",
			Content:   "Ship v1",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		gw, c := s.loaded(existing)
		gw.createFn = func(context.Context, string, string) (models.Note, error) {
			return created, nil
		}
		require.NoError(s.T(), c.OpenCreate(SurfacePageCreate))

		got, err := c.Create(s.ctx, "Plan", "Ship v1")

		require.NoError(s.T(), err)
		assert.Equal(s.T(), created.ID, got.ID)
		visible := c.VisibleNotes()
		require.Len(s.T(), visible, 2)
		assert.Equal(s.T(), created.ID, visible[0].ID)
		assert.Equal(s.T(), existing.ID, visible[1].ID)
		assert.Nil(s.T(), c.CurrentEditIntent())
	})

	s.Run("failure keeps the create surface open with its draft intact", func() {
		gw, c := s.loaded()
		gw.createFn = func(context.Context, string, string) (models.Note, error) {
			return models.Note{}, &gateway.Error{Kind: gateway.KindRemoteRejection, Message: "quota exceeded"}
		}
		require.NoError(s.T(), c.OpenCreate(SurfaceModal))
		c.SetDraft("Plan", "Ship v1")

		_, err := c.Create(s.ctx, "Plan", "Ship v1")

		require.Error(s.T(), err)
		assert.Equal(s.T(), "quota exceeded", gateway.MessageOf(err))
		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.Equal(s.T(), "Plan", intent.Title)
		assert.Equal(s.T(), "Ship v1", intent.Content)
		assert.Empty(s.T(), c.VisibleNotes())
	})
}

func (s *CoordinatorSuite) TestUpdate() {
	s.Run("unknown note is rejected before any network call", func() {
		gw, c := s.loaded(note("a", "alpha"))
		before := gw.callCount()

		err := c.Update(s.ctx, uuid.New(), "T", "C")

		require.Error(s.T(), err)
		assert.Equal(s.T(), gateway.KindValidation, gateway.KindOf(err))
		assert.Equal(s.T(), before, gw.callCount())
	})

	s.Run("success replaces title and content in place, createdAt untouched", func() {
		n := note("old", "old content")
		_, c := s.loaded(n)
		createdAtBefore := c.VisibleNotes()[0].CreatedAt

		require.NoError(s.T(), c.Update(s.ctx, n.ID, "T", "C"))

		visible := c.VisibleNotes()
		require.Len(s.T(), visible, 1)
		assert.Equal(s.T(), n.ID, visible[0].ID)
		assert.Equal(s.T(), "T", visible[0].Title)
		assert.Equal(s.T(), "C", visible[0].Content)
		assert.True(s.T(), createdAtBefore.Equal(visible[0].CreatedAt))
	})

	s.Run("failure leaves the cache unchanged, no optimistic write", func() {
		n := note("old", "old content")
		gw, c := s.loaded(n)
		gw.updateFn = func(context.Context, string, string, string) error {
			return &gateway.Error{Kind: gateway.KindTransportFailure, Message: "Something went wrong. Please try again."}
		}

		require.Error(s.T(), c.Update(s.ctx, n.ID, "T", "C"))

		visible := c.VisibleNotes()
		assert.Equal(s.T(), "old", visible[0].Title)
		assert.Equal(s.T(), "old content", visible[0].Content)
	})

	s.Run("an open full-page copy of the note is refreshed on success", func() {
		n := note("old", "old content")
		_, c := s.loaded(n)
		require.NoError(s.T(), c.OpenEdit(n.ID, SurfacePage))
		c.StartEditing()
		c.SetDraft("T", "C")

		require.NoError(s.T(), c.Update(s.ctx, n.ID, "T", "C"))

		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.Equal(s.T(), "T", intent.Title)
		assert.Equal(s.T(), "C", intent.Content)
		assert.False(s.T(), intent.HasChanges())
		assert.False(s.T(), intent.Editing)
	})

	s.Run("a second save for the same note cannot pipeline behind the first", func() {
		n := note("a", "alpha")
		gw, c := s.loaded(n)
		block := make(chan struct{})
		gw.updateFn = func(context.Context, string, string, string) error {
			<-block
			return nil
		}

		firstDone := make(chan error, 1)
		go func() {
			firstDone <- c.Update(s.ctx, n.ID, "first", "save")
		}()

		require.Eventually(s.T(), func() bool { return c.IsSaving(n.ID) }, time.Second, time.Millisecond)

		err := c.Update(s.ctx, n.ID, "second", "save")
		require.Error(s.T(), err)
		assert.Equal(s.T(), gateway.KindValidation, gateway.KindOf(err))

		close(block)
		require.NoError(s.T(), <-firstDone)
		assert.Equal(s.T(), "first", c.VisibleNotes()[0].Title)
	})

	s.Run("mutations against different notes may overlap", func() {
		n1 := note("a", "alpha")
		n2 := note("b", "beta")
		gw, c := s.loaded(n1, n2)
		block := make(chan struct{})
		gw.updateFn = func(_ context.Context, noteID, _, _ string) error {
			if noteID == n1.ID.String() {
				<-block
			}
			return nil
		}

		firstDone := make(chan error, 1)
		go func() {
			firstDone <- c.Update(s.ctx, n1.ID, "first", "save")
		}()
		require.Eventually(s.T(), func() bool { return c.IsSaving(n1.ID) }, time.Second, time.Millisecond)

		require.NoError(s.T(), c.Update(s.ctx, n2.ID, "second", "note"))

		close(block)
		require.NoError(s.T(), <-firstDone)
	})
}

func (s *CoordinatorSuite) TestSoftDelete() {
	s.Run("create then soft-delete closes the open full-page surface", func() {
		created := models.Note{
			ID:        uuid.New(),
			Title:     "Plan",
			Content:   "Ship v1",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		gw, c := s.loaded(note("previous", "entry"))
		gw.createFn = func(context.Context, string, string) (models.Note, error) {
			return created, nil
		}

		got, err := c.Create(s.ctx, "Plan", "Ship v1")
		require.NoError(s.T(), err)
		require.Equal(s.T(), created.ID, c.VisibleNotes()[0].ID)

		require.NoError(s.T(), c.OpenEdit(got.ID, SurfacePage))

		require.NoError(s.T(), c.SoftDelete(s.ctx, got.ID))

		for _, n := range c.VisibleNotes() {
			assert.NotEqual(s.T(), got.ID, n.ID)
		}
		assert.Nil(s.T(), c.CurrentEditIntent())
	})

	s.Run("failure keeps the note visible", func() {
		n := note("a", "alpha")
		gw, c := s.loaded(n)
		gw.deleteFn = func(context.Context, string) error {
			return &gateway.Error{Kind: gateway.KindRemoteRejection, Message: "note not found"}
		}

		require.Error(s.T(), c.SoftDelete(s.ctx, n.ID))
		assert.Len(s.T(), c.VisibleNotes(), 1)
	})
}

func (s *CoordinatorSuite) TestEditIntentArbitration() {
	s.Run("only one intent may be open; a dirty one blocks the next", func() {
		n1 := note("a", "alpha")
		n2 := note("b", "beta")
		_, c := s.loaded(n1, n2)
		require.NoError(s.T(), c.OpenEdit(n1.ID, SurfaceModal))
		c.SetDraft("a changed", "alpha")

		err := c.OpenEdit(n2.ID, SurfaceModal)

		require.ErrorIs(s.T(), err, ErrUnsavedChanges)

		require.NoError(s.T(), c.CloseSurface(true))
		require.NoError(s.T(), c.OpenEdit(n2.ID, SurfaceModal))
		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.Equal(s.T(), n2.ID, intent.NoteID)
	})

	s.Run("a clean intent is silently replaced", func() {
		n1 := note("a", "alpha")
		_, c := s.loaded(n1)
		require.NoError(s.T(), c.OpenEdit(n1.ID, SurfacePage))

		require.NoError(s.T(), c.OpenCreate(SurfacePageCreate))
		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.True(s.T(), intent.IsCreate())
	})

	s.Run("cancel editing reverts the draft to the last saved values", func() {
		n := note("saved title", "saved content")
		_, c := s.loaded(n)
		require.NoError(s.T(), c.OpenEdit(n.ID, SurfacePage))
		c.StartEditing()
		c.SetDraft("dirty", "draft")

		require.ErrorIs(s.T(), c.CancelEditing(false), ErrUnsavedChanges)

		require.NoError(s.T(), c.CancelEditing(true))
		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.Equal(s.T(), "saved title", intent.Title)
		assert.Equal(s.T(), "saved content", intent.Content)
		assert.False(s.T(), intent.Editing)
	})

	s.Run("start editing is disabled in create mode", func() {
		_, c := s.loaded()
		require.NoError(s.T(), c.OpenCreate(SurfacePageCreate))

		c.StartEditing()

		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.True(s.T(), intent.Editing)
		assert.True(s.T(), intent.IsCreate())
	})
}

func (s *CoordinatorSuite) TestCommit() {
	s.Run("commit routes a create intent through create", func() {
		_, c := s.loaded()
		require.NoError(s.T(), c.OpenCreate(SurfaceModal))
		c.SetDraft("Plan", "Ship v1")

		require.NoError(s.T(), c.Commit(s.ctx))

		require.Len(s.T(), c.VisibleNotes(), 1)
		assert.Equal(s.T(), "Plan", c.VisibleNotes()[0].Title)
		assert.Nil(s.T(), c.CurrentEditIntent())
	})

	s.Run("commit routes an edit intent through update", func() {
		n := note("old", "content")
		_, c := s.loaded(n)
		require.NoError(s.T(), c.OpenEdit(n.ID, SurfaceModal))
		c.SetDraft("new", "content")

		require.NoError(s.T(), c.Commit(s.ctx))

		assert.Equal(s.T(), "new", c.VisibleNotes()[0].Title)
	})

	s.Run("commit with nothing open is a validation error", func() {
		_, c := s.loaded()

		err := c.Commit(s.ctx)

		require.Error(s.T(), err)
		assert.Equal(s.T(), gateway.KindValidation, gateway.KindOf(err))
	})
}

func (s *CoordinatorSuite) TestStaleCreateResponse() {
	s.Run("a create finishing after its surface was replaced cannot close the new surface", func() {
		gw, c := s.loaded()
		block := make(chan struct{})
		gw.createFn = func(_ context.Context, title, content string) (models.Note, error) {
			<-block
			return models.Note{ID: uuid.New(), Title: title, Content: content}, nil
		}
		require.NoError(s.T(), c.OpenCreate(SurfaceModal))
		c.SetDraft("Plan", "Ship v1")

		done := make(chan error, 1)
		go func() {
			_, err := c.Create(s.ctx, "Plan", "Ship v1")
			done <- err
		}()
		require.Eventually(s.T(), func() bool { return c.IsSaving(uuid.Nil) }, time.Second, time.Millisecond)

		// The user abandons the first surface and opens a fresh one while
		// the request is still in flight.
		require.NoError(s.T(), c.CloseSurface(true))
		require.NoError(s.T(), c.OpenCreate(SurfacePageCreate))
		c.SetDraft("Second", "draft")

		close(block)
		require.NoError(s.T(), <-done)

		intent := c.CurrentEditIntent()
		require.NotNil(s.T(), intent)
		assert.Equal(s.T(), "Second", intent.Title)
		assert.Len(s.T(), c.VisibleNotes(), 1)
	})
}
