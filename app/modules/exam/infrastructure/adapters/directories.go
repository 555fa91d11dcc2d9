package adapters

import (
	"context"
	"errors"
	"strings"

	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DirectoryAdapter adapts the exam repository to the club, member and belt lookup ports.
type DirectoryAdapter struct {
	repo examdb.Repository
	db   bun.IDB
}

// NewDirectoryAdapter constructs a new adapter. db may be nil to use the repository's
// default connection.
func NewDirectoryAdapter(repo examdb.Repository, db bun.IDB) *DirectoryAdapter {
	return &DirectoryAdapter{repo: repo, db: db}
}

// Directories returns the adapter as every lookup port of the service.
func (a *DirectoryAdapter) Directories() examservice.Directories {
	return examservice.Directories{Clubs: a, Members: a, Belts: a}
}

func translate(err error) error {
	if errors.Is(err, examdb.ErrNotFound) {
		return examservice.ErrNotFound
	}
	return err
}

func (a *DirectoryAdapter) ResolveClub(ctx context.Context, code string) (uuid.UUID, error) {
	club, err := a.repo.GetClubByCode(ctx, a.db, strings.TrimSpace(code))
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return club.UUID, nil
}

func (a *DirectoryAdapter) ResolveMember(ctx context.Context, code string) (uuid.UUID, error) {
	member, err := a.repo.GetMemberByCode(ctx, a.db, strings.TrimSpace(code))
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return member.UUID, nil
}

// ResolveClubMember only finds members registered with clubID.
func (a *DirectoryAdapter) ResolveClubMember(ctx context.Context, clubID uuid.UUID, code string) (uuid.UUID, error) {
	member, err := a.repo.GetClubMember(ctx, a.db, clubID, strings.TrimSpace(code))
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return member.UUID, nil
}

func (a *DirectoryAdapter) ResolveBelt(ctx context.Context, label string) (uuid.UUID, error) {
	belt, err := a.repo.GetBeltByLabel(ctx, a.db, strings.TrimSpace(label))
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return belt.UUID, nil
}

var (
	_ examservice.ClubDirectory       = (*DirectoryAdapter)(nil)
	_ examservice.ClubMemberDirectory = (*DirectoryAdapter)(nil)
	_ examservice.BeltDirectory       = (*DirectoryAdapter)(nil)
)
