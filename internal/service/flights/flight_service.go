package flights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/flightdashboard/internal/domain"
	"github.com/Domenick1991/flightdashboard/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	ListFlights(ctx context.Context) ([]domain.FlightView, error)
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	AddFlight(ctx context.Context, create *domain.FlightCreate) (domain.FlightView, error)
	UpdateFlight(ctx context.Context, flight domain.Flight) (domain.Flight, error)
	DeleteFlight(ctx context.Context, id string) (bool, error)
}

// FlightCache holds the raw stored flight list between mutations.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *zap.Logger
	now   func() time.Time

	// cacheMu orders cache fills against invalidations. generation is
	// bumped by every invalidation; a fill that started under an older
	// generation is discarded.
	cacheMu    sync.Mutex
	generation uint64
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithLogger(log *zap.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

// WithClock replaces the source of "now" used to derive statuses.
func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(repo repository.FlightRepository, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo: repo,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) ListFlights(ctx context.Context) ([]domain.FlightView, error) {
	s.log.Info("getting all flights")

	flights, err := s.storedFlights(ctx)
	if err != nil {
		s.log.Error("error getting all flights", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	now := s.now().UTC()
	views := make([]domain.FlightView, 0, len(flights))
	for _, f := range flights {
		views = append(views, domain.NewFlightView(f, now))
	}

	s.log.Info("flights retrieved", zap.Int("count", len(views)))
	return views, nil
}

func (s *FlightService) storedFlights(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.log.Warn("flight cache read failed", zap.Error(err))
		}
	}

	gen := s.cacheGeneration()
	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.fillCache(ctx, gen, flights)
	}
	return flights, nil
}

func (s *FlightService) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// fillCache stores flights unless a mutation invalidated the cache after
// they were read.
func (s *FlightService) fillCache(ctx context.Context, gen uint64, flights []domain.Flight) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		s.log.Debug("skipping stale flight cache fill")
		return
	}
	if err := s.cache.SetFlights(ctx, flights); err != nil {
		s.log.Warn("flight cache write failed", zap.Error(err))
	}
}

// GetFlight returns nil, nil when id is malformed or no such flight exists.
func (s *FlightService) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	s.log.Info("getting flight by id", zap.String("flight_id", id))
	if id == "" {
		s.log.Warn("flight id is empty")
		return nil, nil
	}

	flightID, ok := s.parseID(id)
	if !ok {
		return nil, nil
	}

	flight, err := s.repo.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("flight not found", zap.Int64("flight_id", flightID))
			return nil, nil
		}
		s.log.Error("error getting flight", zap.Int64("flight_id", flightID), zap.Error(err))
		return nil, err
	}

	s.log.Info("flight retrieved", zap.Int64("flight_id", flightID))
	return flight, nil
}

// AddFlight stores a new flight. The status on create is ignored.
func (s *FlightService) AddFlight(ctx context.Context, create *domain.FlightCreate) (domain.FlightView, error) {
	if create == nil {
		s.log.Warn("flight create payload is nil")
		return domain.FlightView{}, ErrNilFlight
	}

	flight := domain.Flight{
		FlightNumber:     create.FlightNumber,
		DepartureAirport: create.DepartureAirport,
		ArrivalAirport:   create.ArrivalAirport,
		DepartureTime:    create.DepartureTime,
		ArrivalTime:      create.ArrivalTime,
	}.UTC()

	s.log.Info("adding new flight", zap.String("flight_number", flight.FlightNumber))
	if err := s.repo.Insert(ctx, &flight); err != nil {
		s.log.Error("error adding flight", zap.String("flight_number", flight.FlightNumber), zap.Error(err))
		return domain.FlightView{}, err
	}
	s.invalidate(ctx)

	s.log.Info("flight added", zap.Int64("flight_id", flight.ID))
	return domain.NewFlightView(flight, s.now().UTC()), nil
}

// UpdateFlight replaces the stored flight with the same ID. The submitted
// flight is returned whether or not a matching record existed.
func (s *FlightService) UpdateFlight(ctx context.Context, flight domain.Flight) (domain.Flight, error) {
	flight = flight.UTC()

	s.log.Info("updating flight", zap.Int64("flight_id", flight.ID))
	updated, err := s.repo.Update(ctx, flight)
	if err != nil {
		s.log.Error("error updating flight", zap.Int64("flight_id", flight.ID), zap.Error(err))
		return domain.Flight{}, err
	}
	s.invalidate(ctx)

	if updated {
		s.log.Info("flight updated", zap.Int64("flight_id", flight.ID))
	} else {
		s.log.Warn("flight not found for update", zap.Int64("flight_id", flight.ID))
	}
	return flight, nil
}

// DeleteFlight reports true only when a record was removed.
func (s *FlightService) DeleteFlight(ctx context.Context, id string) (bool, error) {
	s.log.Info("deleting flight", zap.String("flight_id", id))

	flightID, ok := s.parseID(id)
	if !ok {
		return false, nil
	}

	deleted, err := s.repo.Delete(ctx, flightID)
	if err != nil {
		s.log.Error("error deleting flight", zap.Int64("flight_id", flightID), zap.Error(err))
		return false, err
	}

	if deleted {
		s.invalidate(ctx)
		s.log.Info("flight deleted", zap.Int64("flight_id", flightID))
	} else {
		s.log.Warn("flight not found for deletion", zap.Int64("flight_id", flightID))
	}
	return deleted, nil
}

func (s *FlightService) parseID(id string) (int64, bool) {
	flightID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		s.log.Warn("invalid flight id", zap.String("flight_id", id))
		return 0, false
	}
	return flightID, true
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flight cache invalidation failed", zap.Error(err))
	}
}

var _ FlightUseCase = (*FlightService)(nil)
