package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DeadlineService manages the per-group windows of SAT tests.
type DeadlineService interface {
	Create(req dto.DeadlineCreateDTO) (*dto.DeadlineDTO, error)
	Update(id uint, req dto.DeadlineUpdateDTO) (*dto.DeadlineDTO, error)
	Delete(id uint) error
	ListForSatTest(satTestID uint) ([]dto.DeadlineDTO, error)
}

type deadlineService struct {
	deadlineRepo repository.DeadlineRepository
	satTestRepo  repository.SatTestRepository
}

func NewDeadlineService(deadlineRepo repository.DeadlineRepository, satTestRepo repository.SatTestRepository) DeadlineService {
	return &deadlineService{deadlineRepo: deadlineRepo, satTestRepo: satTestRepo}
}

func (s *deadlineService) Create(req dto.DeadlineCreateDTO) (*dto.DeadlineDTO, error) {
	if !req.Due.After(req.Opens) {
		return nil, validationError(ErrInvalidWindow)
	}
	if _, err := s.satTestRepo.FindByID(req.SatTestID); err != nil {
		return nil, lookupError(ErrSatTestNotFound, "load sat test", err)
	}
	existing, err := s.deadlineRepo.FindBySatTestAndGroups(req.SatTestID, []uint{req.GroupID})
	if err != nil {
		return nil, persistenceError("load deadlines", err)
	}
	if len(existing) > 0 {
		return nil, validationError(fmt.Errorf("group %d already has a deadline for SAT test %d", req.GroupID, req.SatTestID))
	}

	deadline := model.Deadline{
		SatTestID: req.SatTestID,
		GroupID:   req.GroupID,
		Opens:     req.Opens.UTC(),
		Due:       req.Due.UTC(),
	}
	if err := s.deadlineRepo.Create(&deadline); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationError(fmt.Errorf("group %d already has a deadline for SAT test %d", req.GroupID, req.SatTestID))
		}
		log.Error().Err(err).Msg("CreateDeadline: Failed to create deadline")
		return nil, persistenceError("create deadline", err)
	}
	log.Info().Uint("deadlineID", deadline.ID).Uint("satTestID", deadline.SatTestID).Uint("groupID", deadline.GroupID).Msg("CreateDeadline: Deadline created")
	return toDeadlineDTO(deadline), nil
}

func (s *deadlineService) Update(id uint, req dto.DeadlineUpdateDTO) (*dto.DeadlineDTO, error) {
	if !req.Due.After(req.Opens) {
		return nil, validationError(ErrInvalidWindow)
	}
	deadline, err := s.deadlineRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(ErrDeadlineNotFound, "load deadline", err)
	}
	deadline.Opens = req.Opens.UTC()
	deadline.Due = req.Due.UTC()
	if err := s.deadlineRepo.Update(deadline); err != nil {
		log.Error().Err(err).Uint("deadlineID", id).Msg("UpdateDeadline: Failed to update deadline")
		return nil, persistenceError("update deadline", err)
	}
	return toDeadlineDTO(*deadline), nil
}

func (s *deadlineService) Delete(id uint) error {
	if err := s.deadlineRepo.Delete(id); err != nil {
		return lookupError(ErrDeadlineNotFound, "delete deadline", err)
	}
	log.Info().Uint("deadlineID", id).Msg("DeleteDeadline: Deadline deleted")
	return nil
}

func (s *deadlineService) ListForSatTest(satTestID uint) ([]dto.DeadlineDTO, error) {
	if _, err := s.satTestRepo.FindByID(satTestID); err != nil {
		return nil, lookupError(ErrSatTestNotFound, "load sat test", err)
	}
	deadlines, err := s.deadlineRepo.FindBySatTest(satTestID)
	if err != nil {
		return nil, persistenceError("list deadlines", err)
	}
	out := make([]dto.DeadlineDTO, 0, len(deadlines))
	for _, d := range deadlines {
		out = append(out, *toDeadlineDTO(d))
	}
	return out, nil
}

func toDeadlineDTO(d model.Deadline) *dto.DeadlineDTO {
	var out dto.DeadlineDTO
	copier.Copy(&out, &d)
	return &out
}
