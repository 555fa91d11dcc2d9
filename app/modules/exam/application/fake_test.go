package examservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ------------------------
// Fake Directories
// ------------------------

type FakeDirectory struct {
	mu    sync.Mutex
	trace []string

	ResolveClubFunc   func(ctx context.Context, code string) (uuid.UUID, error)
	ResolveMemberFunc func(ctx context.Context, code string) (uuid.UUID, error)
	ResolveBeltFunc   func(ctx context.Context, label string) (uuid.UUID, error)
}

func (f *FakeDirectory) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeDirectory) ResolveClub(ctx context.Context, code string) (uuid.UUID, error) {
	f.record("ResolveClub:" + code)
	if f.ResolveClubFunc != nil {
		return f.ResolveClubFunc(ctx, code)
	}
	return uuid.Nil, ErrNotFound
}

func (f *FakeDirectory) ResolveMember(ctx context.Context, code string) (uuid.UUID, error) {
	f.record("ResolveMember:" + code)
	if f.ResolveMemberFunc != nil {
		return f.ResolveMemberFunc(ctx, code)
	}
	return uuid.Nil, ErrNotFound
}

func (f *FakeDirectory) ResolveBelt(ctx context.Context, label string) (uuid.UUID, error) {
	f.record("ResolveBelt:" + label)
	if f.ResolveBeltFunc != nil {
		return f.ResolveBeltFunc(ctx, label)
	}
	return uuid.Nil, ErrNotFound
}

func (f *FakeDirectory) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeDirectory) Directories() Directories {
	return Directories{Clubs: f, Members: f, Belts: f}
}

// FakeScopedMembers adds club-scoped member lookups.
type FakeScopedMembers struct {
	*FakeDirectory
	ResolveClubMemberFunc func(ctx context.Context, clubID uuid.UUID, code string) (uuid.UUID, error)
}

func (f *FakeScopedMembers) ResolveClubMember(ctx context.Context, clubID uuid.UUID, code string) (uuid.UUID, error) {
	f.record("ResolveClubMember:" + code)
	return f.ResolveClubMemberFunc(ctx, clubID, code)
}

// stableID derives a deterministic id from a code so tests can predict references.
func stableID(kind, code string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+code))
}

// knownDirectory resolves every code except the ones listed as missing.
func knownDirectory(missingMembers ...string) *FakeDirectory {
	missing := map[string]bool{}
	for _, m := range missingMembers {
		missing[m] = true
	}
	return &FakeDirectory{
		ResolveClubFunc: func(ctx context.Context, code string) (uuid.UUID, error) {
			return stableID("club", code), nil
		},
		ResolveMemberFunc: func(ctx context.Context, code string) (uuid.UUID, error) {
			if missing[code] {
				return uuid.Nil, ErrNotFound
			}
			return stableID("member", code), nil
		},
		ResolveBeltFunc: func(ctx context.Context, label string) (uuid.UUID, error) {
			return stableID("belt", label), nil
		},
	}
}

// Ensure the fakes satisfy the ports
var (
	_ ClubDirectory       = (*FakeDirectory)(nil)
	_ MemberDirectory     = (*FakeDirectory)(nil)
	_ BeltDirectory       = (*FakeDirectory)(nil)
	_ ClubMemberDirectory = (*FakeScopedMembers)(nil)
)
