package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"goggins/internal/identity/models"
	"goggins/pkg/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestLookupBehavior() {
	s.Run("returns user by ID when exists", func() {
		u := &models.User{
			ID:        uuid.New(),
			Email:     "jane.doe@example.com",
			FirstName: "Jane",
		}
		s.Require().NoError(s.store.Save(context.Background(), u))

		found, err := s.store.FindByID(context.Background(), u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("returns user by email case-insensitively", func() {
		u := &models.User{ID: uuid.New(), Email: "Email.Lookup@Example.com"}
		s.Require().NoError(s.store.Save(context.Background(), u))

		found, err := s.store.FindByEmail(context.Background(), "email.lookup@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(context.Background(), uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(context.Background(), "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSaveOverwrites() {
	u := &models.User{ID: uuid.New(), Email: "flip@example.com", Verified: false}
	s.Require().NoError(s.store.Save(context.Background(), u))

	u.Verified = true
	s.Require().NoError(s.store.Save(context.Background(), u))

	found, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().NoError(err)
	s.True(found.Verified)
}

func (s *InMemoryStoreSuite) TestSaveCopies() {
	u := &models.User{ID: uuid.New(), Email: "copy@example.com"}
	s.Require().NoError(s.store.Save(context.Background(), u))

	// Mutating the caller's struct must not reach the store.
	u.Email = "changed@example.com"

	found, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal("copy@example.com", found.Email)
}

func (s *InMemoryStoreSuite) TestDelete() {
	u := &models.User{ID: uuid.New(), Email: "delete.me@example.com"}
	s.Require().NoError(s.store.Save(context.Background(), u))

	s.Require().NoError(s.store.Delete(context.Background(), u.ID))

	_, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(context.Background(), u.ID), sentinel.ErrNotFound)
}
