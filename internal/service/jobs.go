package service

import (
	"fmt"
	"log"

	"haulbook/internal/repository"
)

// SweepService runs the periodic status sweeps. It is operational
// convenience only; correctness never depends on it.
type SweepService struct {
	Repo *repository.JobRepository
}

func NewSweepService(repo *repository.JobRepository) *SweepService {
	return &SweepService{Repo: repo}
}

// CompleteFinishedBookings marks confirmed bookings whose window has ended
// as completed.
func (s *SweepService) CompleteFinishedBookings() error {
	ids, err := s.Repo.GetConfirmedBookingIDsPastEnd()
	if err != nil {
		return fmt.Errorf("sweep: failed to find confirmed bookings past end time: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	log.Printf("Sweep: marking %d bookings completed. IDs: %v", len(ids), ids)
	if err := s.Repo.UpdateBookingStatuses(ids, "completed"); err != nil {
		return fmt.Errorf("sweep: failed to complete bookings: %w", err)
	}
	return nil
}

// CancelStalePendingBookings cancels pending bookings whose window passed
// without staff confirmation, freeing their committed capacity.
func (s *SweepService) CancelStalePendingBookings() error {
	ids, err := s.Repo.GetPendingBookingIDsPastEnd()
	if err != nil {
		return fmt.Errorf("sweep: failed to find stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	log.Printf("Sweep: cancelling %d stale pending bookings. IDs: %v", len(ids), ids)
	if err := s.Repo.UpdateBookingStatuses(ids, "cancelled"); err != nil {
		return fmt.Errorf("sweep: failed to cancel stale pending bookings: %w", err)
	}
	return nil
}
