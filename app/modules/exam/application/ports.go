package examservice

import (
	"context"

	"github.com/google/uuid"
)

// ClubDirectory resolves club codes. It returns ErrNotFound when no club matches.
type ClubDirectory interface {
	ResolveClub(ctx context.Context, code string) (uuid.UUID, error)
}

// MemberDirectory resolves member codes. It returns ErrNotFound when no member matches.
type MemberDirectory interface {
	ResolveMember(ctx context.Context, code string) (uuid.UUID, error)
}

// ClubMemberDirectory is implemented by member directories that can restrict a lookup to
// the members of one club.
type ClubMemberDirectory interface {
	MemberDirectory
	ResolveClubMember(ctx context.Context, clubID uuid.UUID, code string) (uuid.UUID, error)
}

// BeltDirectory resolves belt labels. It returns ErrNotFound when no belt matches.
type BeltDirectory interface {
	ResolveBelt(ctx context.Context, label string) (uuid.UUID, error)
}
