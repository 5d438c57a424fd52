package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
)

type VersionReason string

const (
	VersionReasonCreate    VersionReason = "create"
	VersionReasonSave      VersionReason = "save"
	VersionReasonRestore   VersionReason = "restore"
	VersionReasonDuplicate VersionReason = "duplicate"
)

func (r VersionReason) String() string {
	return string(r)
}

// Version: неизменяемый снимок документа. Content не изменяется после
// создания; для правок используйте Content.Clone().
type Version struct {
	ID            uuid.UUID
	ProposalID    uuid.UUID
	VersionNumber int
	Content       *document.Document
	ContentHash   string
	Reason        VersionReason
	RestoredFrom  *uuid.UUID
	CreatedAt     time.Time
}

// Clone возвращает копию версии с независимым документом.
func (v *Version) Clone() *Version {
	cp := *v
	cp.Content = v.Content.Clone()
	if v.RestoredFrom != nil {
		id := *v.RestoredFrom
		cp.RestoredFrom = &id
	}
	return &cp
}
