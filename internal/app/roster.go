package service

import (
	"context"
	"fmt"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/pkg/logger"
	"github.com/okian/dutyrota/pkg/metrics"
)

// ListPeople returns the roster in roster order.
func (s *Service) ListPeople(ctx context.Context) (model.Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.state.Roster.Clone(), nil
}

// GetPerson returns the person called name.
func (s *Service) GetPerson(ctx context.Context, name string) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return model.Person{}, err
	}
	i := s.state.Roster.Index(name)
	if i < 0 {
		return model.Person{}, fmt.Errorf("%w: %s", ErrPersonNotFound, name)
	}
	return s.state.Roster[i].Clone(), nil
}

// AddPerson appends p to the end of the roster.
func (s *Service) AddPerson(ctx context.Context, p model.Person) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return model.Person{}, err
	}

	np, err := model.NewPerson(s.slots, p.Name, p.Eligibility...)
	if err != nil {
		return model.Person{}, err
	}
	if s.state.Roster.Index(np.Name) >= 0 {
		return model.Person{}, fmt.Errorf("%w: %s", model.ErrDuplicateName, np.Name)
	}

	next := s.state.Clone()
	next.Roster = append(next.Roster, np)
	if err := s.commit(ctx, next); err != nil {
		return model.Person{}, err
	}

	metrics.RecordRosterChange("add")
	s.logger.Info(ctx, "person added",
		logger.String("name", np.Name),
		logger.Any("eligibility", np.Eligibility),
	)
	return np.Clone(), nil
}

// UpdatePerson replaces the person called name with p, keeping their
// roster position. A rename is applied to every slot history; losing
// eligibility for a slot drops the person from that slot's current cycle.
func (s *Service) UpdatePerson(ctx context.Context, name string, p model.Person) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return model.Person{}, err
	}

	i := s.state.Roster.Index(name)
	if i < 0 {
		return model.Person{}, fmt.Errorf("%w: %s", ErrPersonNotFound, name)
	}
	np, err := model.NewPerson(s.slots, p.Name, p.Eligibility...)
	if err != nil {
		return model.Person{}, err
	}
	renamed := np.Name != name
	if renamed && s.state.Roster.Index(np.Name) >= 0 {
		return model.Person{}, fmt.Errorf("%w: %s", model.ErrDuplicateName, np.Name)
	}

	old := s.state.Roster[i]
	history := s.state.History
	if renamed {
		history = history.Rename(name, np.Name)
	}
	for _, slot := range old.Eligibility {
		if !np.CanWork(slot) {
			history = history.Forget(slot, np.Name)
		}
	}

	next := s.state.Clone()
	next.Roster[i] = np
	next.History = history.Clone()
	if err := s.commit(ctx, next); err != nil {
		return model.Person{}, err
	}

	op := "update"
	if renamed {
		op = "rename"
	}
	metrics.RecordRosterChange(op)
	s.logger.Info(ctx, "person updated",
		logger.String("name", name),
		logger.String("newName", np.Name),
		logger.Any("eligibility", np.Eligibility),
	)
	return np.Clone(), nil
}

// DeletePerson removes the person called name and purges them from every
// slot history.
func (s *Service) DeletePerson(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return err
	}

	i := s.state.Roster.Index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPersonNotFound, name)
	}

	next := s.state.Clone()
	next.Roster = append(next.Roster[:i], next.Roster[i+1:]...)
	next.History = s.state.History.Remove(name)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	metrics.RecordRosterChange("delete")
	s.logger.Info(ctx, "person deleted", logger.String("name", name))
	return nil
}
