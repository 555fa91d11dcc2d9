package examservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Resolver maps the codes of a row to record identifiers. Concurrent lookups of the same
// code share one directory call.
type Resolver struct {
	clubs   ClubDirectory
	members MemberDirectory
	belts   BeltDirectory
	group   singleflight.Group
}

// NewResolver creates a resolver over the three directories.
func NewResolver(clubs ClubDirectory, members MemberDirectory, belts BeltDirectory) *Resolver {
	return &Resolver{clubs: clubs, members: members, belts: belts}
}

// Resolve looks up club, member and belt in that order and stops at the first failure.
// The returned issue is nil on success.
func (r *Resolver) Resolve(ctx context.Context, row *ExamResultRow) (References, *FieldIssue) {
	var refs References

	clubID, issue := r.lookup(ctx, "club", ColClubCode, "club:"+row.ClubCode, row.ClubCode, func(ctx context.Context) (uuid.UUID, error) {
		return r.clubs.ResolveClub(ctx, row.ClubCode)
	})
	if issue != nil {
		return refs, issue
	}
	refs.ClubID = clubID

	memberKey := "member:" + row.MemberCode
	memberLookup := func(ctx context.Context) (uuid.UUID, error) {
		return r.members.ResolveMember(ctx, row.MemberCode)
	}
	if scoped, ok := r.members.(ClubMemberDirectory); ok {
		memberKey = "member:" + clubID.String() + ":" + row.MemberCode
		memberLookup = func(ctx context.Context) (uuid.UUID, error) {
			return scoped.ResolveClubMember(ctx, clubID, row.MemberCode)
		}
	}
	memberID, issue := r.lookup(ctx, "member", ColMemberCode, memberKey, row.MemberCode, memberLookup)
	if issue != nil {
		return refs, issue
	}
	refs.MemberID = memberID

	beltID, issue := r.lookup(ctx, "belt", ColTargetBeltLabel, "belt:"+row.TargetBeltLabel, row.TargetBeltLabel, func(ctx context.Context) (uuid.UUID, error) {
		return r.belts.ResolveBelt(ctx, row.TargetBeltLabel)
	})
	if issue != nil {
		return refs, issue
	}
	refs.BeltID = beltID

	return refs, nil
}

func (r *Resolver) lookup(
	ctx context.Context,
	entity string,
	col int,
	key string,
	code string,
	fn func(ctx context.Context) (uuid.UUID, error),
) (uuid.UUID, *FieldIssue) {
	v, err, _ := r.group.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, &FieldIssue{Field: ColumnNames[col], Message: fmt.Sprintf("%s not found: %s", entity, code)}
		}
		return uuid.Nil, &FieldIssue{Field: ColumnNames[col], Message: fmt.Sprintf("%s lookup failed: %v", entity, err)}
	}
	return v.(uuid.UUID), nil
}
