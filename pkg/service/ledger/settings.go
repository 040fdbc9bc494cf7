package ledger

import (
	"fmt"

	"github.com/amirasaad/finsync/pkg/domain"
)

func notificationID(n domain.AppNotification) string { return n.ID }

// AppendNotifications adds notifications raised elsewhere, e.g. by the
// due-today scan. Due-bill notices already present for the same day are
// dropped.
func (s *Service) AppendNotifications(ns []domain.AppNotification) error {
	if len(ns) == 0 {
		return nil
	}
	return s.state.Update(func(st *domain.State) error {
		for _, n := range ns {
			if n.Kind == domain.NotificationKindDueBill && dueNotified(st.Notifications, n) {
				continue
			}
			st.Notifications = append(st.Notifications, n)
		}
		return nil
	})
}

// dueNotified reports whether a due-bill notice with the same message was
// already recorded on n's date, e.g. by another device.
func dueNotified(existing []domain.AppNotification, n domain.AppNotification) bool {
	for _, e := range existing {
		if e.Kind == n.Kind && e.Date == n.Date && e.Message == n.Message {
			return true
		}
	}
	return false
}

func (s *Service) MarkAllRead() error {
	return s.state.Update(func(st *domain.State) error {
		for i := range st.Notifications {
			st.Notifications[i].Read = true
		}
		return nil
	})
}

func (s *Service) DeleteNotification(id string) error {
	return s.state.Update(func(st *domain.State) error {
		i := indexOf(st.Notifications, id, notificationID)
		if i < 0 {
			return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		st.Notifications = remove(st.Notifications, i)
		return nil
	})
}

func (s *Service) ClearNotifications() error {
	return s.state.Update(func(st *domain.State) error {
		st.Notifications = []domain.AppNotification{}
		return nil
	})
}

func (s *Service) SetProfile(p domain.UserProfile) error {
	return s.state.Update(func(st *domain.State) error {
		st.Profile = p
		return nil
	})
}

func (s *Service) SetTheme(t domain.AppTheme) error {
	return s.state.Update(func(st *domain.State) error {
		st.Theme = t
		return nil
	})
}

func (s *Service) SetNotepad(content string) error {
	return s.state.Update(func(st *domain.State) error {
		st.NotepadContent = content
		return nil
	})
}

// SetCDIRate sets the annual CDI rate, in percent.
func (s *Service) SetCDIRate(rate float64) error {
	if rate < 0 {
		return fmt.Errorf("negative CDI rate: %w", domain.ErrValidation)
	}
	return s.state.Update(func(st *domain.State) error {
		st.CDIRate = rate
		return nil
	})
}

// DuplicateMonth rolls the active month into the next calendar month.
func (s *Service) DuplicateMonth() (domain.MonthSummary, error) {
	log := s.logger.With("context", "DuplicateMonth")
	var created domain.MonthSummary
	err := s.state.Update(func(st *domain.State) error {
		ms, err := s.months.DuplicateNext(st)
		created = ms
		return err
	})
	if err != nil {
		log.Warn("DuplicateMonth rejected", "error", err)
		return domain.MonthSummary{}, err
	}
	log.Info("month created", "month", created.Month, "year", created.Year, "total", created.Total)
	return created, nil
}

func (s *Service) SelectMonth(id string) error {
	return s.state.Update(func(st *domain.State) error {
		return s.months.Select(st, id)
	})
}

func (s *Service) DeleteMonth(id string) error {
	return s.state.Update(func(st *domain.State) error {
		return s.months.Delete(st, id)
	})
}
