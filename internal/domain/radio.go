package domain

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanPartial  LoanStatus = "partial"
	LoanReturned LoanStatus = "returned"
)

type RadioExchange struct {
	OldCode string    `json:"old_code"`
	NewCode string    `json:"new_code"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

type RadioReturn struct {
	Codes []string  `json:"codes"`
	At    time.Time `json:"at"`
}

type RadioLoan struct {
	ID             uint            `json:"id"`
	EventID        uint            `json:"event_id"`
	BorrowerName   string          `json:"borrower_name"`
	BorrowerCPF    string          `json:"borrower_cpf,omitempty"`
	Company        string          `json:"company,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Radios         []string        `json:"radios"`
	ReturnedRadios []string        `json:"returned_radios"`
	Status         LoanStatus      `json:"status"`
	PickedUpAt     time.Time       `json:"picked_up_at"`
	ReturnedAt     *time.Time      `json:"returned_at"`
	Exchanges      []RadioExchange `json:"exchanges"`
	Returns        []RadioReturn   `json:"returns"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Outstanding lists the radios currently held by the borrower, in pickup order.
// Each returned code settles a single slot, so a radio that was given back and
// later handed out again on the same loan through an exchange stays outstanding.
func (l RadioLoan) Outstanding() []string {
	returned := make(map[string]int, len(l.ReturnedRadios))
	for _, c := range l.ReturnedRadios {
		returned[c]++
	}

	var out []string
	for _, c := range l.Radios {
		if returned[c] > 0 {
			returned[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}

func (l RadioLoan) Holds(code string) bool {
	for _, c := range l.Outstanding() {
		if c == code {
			return true
		}
	}
	return false
}

// Exchange swaps an outstanding radio for another one.
func (l *RadioLoan) Exchange(oldCode, newCode, reason string, at time.Time) {
	for i, c := range l.Radios {
		if c == oldCode {
			l.Radios[i] = newCode
			break
		}
	}
	l.Exchanges = append(l.Exchanges, RadioExchange{OldCode: oldCode, NewCode: newCode, Reason: reason, At: at})
}

// Return registers codes as given back and updates the loan status.
func (l *RadioLoan) Return(codes []string, at time.Time) {
	l.ReturnedRadios = append(l.ReturnedRadios, codes...)
	l.Returns = append(l.Returns, RadioReturn{Codes: codes, At: at})

	if len(l.Outstanding()) == 0 {
		l.Status = LoanReturned
		returnedAt := at
		l.ReturnedAt = &returnedAt
		return
	}
	l.Status = LoanPartial
}

func (l RadioLoan) IsClosed() bool {
	return l.Status == LoanReturned
}

type RadioLoanFilter struct {
	Status LoanStatus
	Search string
}
