package appstate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/store"
	"github.com/gamedash/gamedash-server/internal/validation"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// stateTTL drops state for browsers that have not been seen for a while.
const stateTTL = 90 * 24 * time.Hour

// Filters are the catalog filters last applied by a client.
type Filters struct {
	Genres    string `json:"genres,omitempty" validate:"omitempty,idlist"`
	Platforms string `json:"platforms,omitempty" validate:"omitempty,idlist"`
	Ordering  string `json:"ordering,omitempty" validate:"omitempty,oneof=-rating -released released -added name -name -metacritic"`
	Dates     string `json:"dates,omitempty" validate:"omitempty,daterange"`
}

// State is everything the dashboard remembers about one browser.
type State struct {
	Theme      string    `json:"theme" validate:"oneof=light dark"`
	LastSearch string    `json:"last_search" validate:"max=200"`
	Filters    Filters   `json:"filters"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Default is the state of a client that has never saved anything.
func Default() State {
	return State{Theme: ThemeLight}
}

// Service reads and writes client state.
type Service struct {
	states    *store.Entity[State]
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service persisting to s.
func NewService(s *store.Store, v *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		states:    store.NewEntity[State](s, "state:").WithTTL(stateTTL),
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the state of clientID, or Default if nothing was saved.
func (s *Service) Get(ctx context.Context, clientID string) (State, error) {
	if clientID == "" {
		return State{}, domainerrors.BadRequest("missing client id")
	}

	st, err := s.states.Get(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return State{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "load client state")
	}
	return *st, nil
}

// Put validates and replaces the state of clientID.
func (s *Service) Put(ctx context.Context, clientID string, st State) (State, error) {
	if clientID == "" {
		return State{}, domainerrors.BadRequest("missing client id")
	}
	if st.Theme == "" {
		st.Theme = ThemeLight
	}
	if err := s.validator.Validate(st); err != nil {
		return State{}, err
	}

	st.UpdatedAt = s.now().UTC()
	if err := s.states.Put(ctx, clientID, &st); err != nil {
		return State{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "save client state")
	}
	s.logger.Debug("client state saved", "client_id", clientID, "theme", st.Theme)
	return st, nil
}

// Delete forgets clientID.
func (s *Service) Delete(ctx context.Context, clientID string) error {
	if err := s.states.Delete(ctx, clientID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "delete client state")
	}
	return nil
}
