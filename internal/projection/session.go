package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type Signer interface {
	Execute(ctx context.Context, proposalID uuid.UUID, name string) (*entity.Proposal, error)
}

type Transition interface {
	Execute(ctx context.Context, proposalID uuid.UUID) (*entity.Proposal, error)
}

// Lifecycle содержит сценарии, на которые сессия переводит действия клиента.
// Get используется, чтобы перечитать предложение после неудачного действия.
type Lifecycle struct {
	Get    Transition
	Sign   Signer
	Accept Transition
	Reject Transition
}

// Session ведёт сеанс просмотра одного предложения клиентом.
type Session struct {
	mu        sync.Mutex
	proposal  *entity.Proposal
	lifecycle Lifecycle
	signing   bool
	draft     string
}

var _ Actions = (*Session)(nil)

func NewSession(p *entity.Proposal, lifecycle Lifecycle) *Session {
	return &Session{proposal: p, lifecycle: lifecycle}
}

func (s *Session) Proposal() *entity.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposal
}

func (s *Session) Projection() Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return build(s.proposal, s, true, s.signing, s.draft)
}

func (s *Session) OnStartSign() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signing = true
}

func (s *Session) OnCancelSign() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signing = false
	s.draft = ""
}

func (s *Session) OnChangeDraftSignature(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = name
}

func (s *Session) OnConfirmSign(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lifecycle.Sign.Execute(ctx, s.proposal.ID, s.draft)
	if err != nil {
		s.reload(ctx)
		return err
	}
	s.proposal = p
	s.signing = false
	s.draft = ""
	return nil
}

func (s *Session) OnAccept(ctx context.Context) error {
	return s.apply(ctx, s.lifecycle.Accept)
}

func (s *Session) OnReject(ctx context.Context) error {
	return s.apply(ctx, s.lifecycle.Reject)
}

func (s *Session) apply(ctx context.Context, action Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := action.Execute(ctx, s.proposal.ID)
	if err != nil {
		s.reload(ctx)
		return err
	}
	s.proposal = p
	s.signing = false
	return nil
}

// reload вызывается под s.mu.
func (s *Session) reload(ctx context.Context) {
	if s.lifecycle.Get == nil {
		return
	}
	if p, err := s.lifecycle.Get.Execute(ctx, s.proposal.ID); err == nil {
		s.proposal = p
	}
}

var errReadOnly = apperror.New(apperror.ErrCodeForbidden, "предпросмотр доступен только для чтения")

// ReadOnlyActions игнорирует действия формы и отклоняет переходы.
type ReadOnlyActions struct{}

var _ Actions = ReadOnlyActions{}

func (ReadOnlyActions) OnStartSign() {}

func (ReadOnlyActions) OnCancelSign() {}

func (ReadOnlyActions) OnChangeDraftSignature(string) {}

func (ReadOnlyActions) OnConfirmSign(context.Context) error {
	return errReadOnly
}

func (ReadOnlyActions) OnAccept(context.Context) error {
	return errReadOnly
}

func (ReadOnlyActions) OnReject(context.Context) error {
	return errReadOnly
}
