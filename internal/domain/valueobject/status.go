package valueobject

import "github.com/ignatzorin/proposal-backend/internal/pkg/apperror"

type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSent, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}

// IsTerminal: из принятого и отклонённого предложения переходов нет.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}

// CanTransitionTo проверяет переход по таблице жизненного цикла.
// Повторная отправка (sent -> sent) разрешена, возврата в draft нет.
func (s ProposalStatus) CanTransitionTo(newStatus ProposalStatus) bool {
	transitions := map[ProposalStatus][]ProposalStatus{
		ProposalStatusDraft:    {ProposalStatusSent},
		ProposalStatusSent:     {ProposalStatusSent, ProposalStatusAccepted, ProposalStatusRejected},
		ProposalStatusAccepted: {},
		ProposalStatusRejected: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func (s ProposalStatus) String() string {
	return string(s)
}

func NewProposalStatus(status string) (ProposalStatus, error) {
	s := ProposalStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус предложения")
	}
	return s, nil
}
