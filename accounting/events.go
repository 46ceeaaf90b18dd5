package accounting

import (
	"math/big"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	EventStake              = "stake"
	EventClaim              = "claim"
	EventRateSet            = "rate_set"
	EventRateChanged        = "rate_changed"
	EventRoleGranted        = "role_granted"
	EventRoleRevoked        = "role_revoked"
	EventReserveChanged     = "reserve_changed"
	EventPayoutTokenChanged = "payout_token_changed"
	EventMint               = "mint"
)

// Event is the ledger's audit trail. Stake events carry a signed amount,
// negative for unstakes.
type Event struct {
	ID        uint   `gorm:"primary_key" json:"id"`
	Kind      string `gorm:"index:idx_event_kind" json:"kind"`
	Account   string `gorm:"index:idx_event_account" json:"account,omitempty"`
	Operator  string `json:"operator,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Day       int64  `json:"day,omitempty"`
	Rate      uint64 `json:"rate,omitempty"`
	Role      string `json:"role,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (s *state) emit(e *Event) error {
	e.Timestamp = s.now
	if err := s.db.Create(e).Error; err != nil {
		return errors.Wrap(err, "record event")
	}
	s.events = append(s.events, e)
	return nil
}

// observe logs a committed event and feeds the metrics
func (e *Event) observe() {
	fields := log.Fields{"kind": e.Kind}
	if e.Account != "" {
		fields["account"] = e.Account
	}
	if e.Amount != "" {
		if v, ok := new(big.Int).SetString(e.Amount, 10); ok {
			fields["amount"] = humanize.BigComma(v)
		}
	}
	switch e.Kind {
	case EventRateSet, EventRateChanged:
		fields["day"] = e.Day
		fields["rate"] = e.Rate
	case EventRoleGranted, EventRoleRevoked:
		fields["role"] = e.Role
	}
	acctLog.WithFields(fields).Info("ledger event")

	eventsTotal.WithLabelValues(e.Kind).Inc()
	if e.Kind == EventClaim {
		if v, ok := new(big.Float).SetString(e.Amount); ok {
			f, _ := v.Float64()
			claimedTotal.Add(f)
		}
	}
}

// EventFilter narrows the event feed. Empty fields match everything.
type EventFilter struct {
	database.PaginationParams
	Kind    string `json:"kind"`
	Account string `json:"account"`
}

type EventPage struct {
	database.PaginationResponse
	Events []Event `json:"events"`
}

// Events pages through the audit trail, oldest first by default.
func (a *Accountant) Events(f EventFilter) (*EventPage, error) {
	f.Default(50, "asc", "id").Max(500)

	page := new(EventPage)
	err := a.read(func(s *state) error {
		q := s.db.Model(&Event{})
		if f.Kind != "" {
			q = q.Where("kind = ?", f.Kind)
		}
		if f.Account != "" {
			q = q.Where("account = ?", f.Account)
		}
		pq, err := database.SimplePagination(q, f.PaginationParams)
		if err != nil {
			return err
		}
		if err := pq.Find(&page.Events).Error; err != nil {
			return errors.Wrap(err, "list events")
		}
		total, err := database.TotalCount(pq)
		if err != nil {
			return errors.Wrap(err, "count events")
		}
		page.TotalRecords = total
		page.Records = len(page.Events)
		return nil
	})
	return page, err
}
