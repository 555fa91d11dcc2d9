package examdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Club is a training hall candidates are registered through.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:c"`
	UUID          uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()" json:"uuid"`
	Code          string    `bun:"code,unique,notnull" json:"code"`
	Name          string    `bun:"name,notnull" json:"name"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Member is a registered practitioner. Its UUID is the user id exam rows are keyed by.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`
	UUID          uuid.UUID  `bun:"uuid,pk,type:uuid,default:gen_random_uuid()" json:"uuid"`
	ClubUUID      uuid.UUID  `bun:"club_uuid,notnull,type:uuid" json:"club_uuid"`
	Code          string     `bun:"code,unique,notnull" json:"code"`
	FullName      string     `bun:"full_name,notnull" json:"full_name"`
	Gender        *string    `bun:"gender,nullzero" json:"gender,omitempty"`
	DateOfBirth   *time.Time `bun:"date_of_birth,type:date,nullzero" json:"date_of_birth,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Club *Club `bun:"rel:belongs-to,join:club_uuid=uuid" json:"-"`
}

// BeltLevel is a rank candidates are examined for.
type BeltLevel struct {
	bun.BaseModel `bun:"table:belt_levels,alias:b"`
	UUID          uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()" json:"uuid"`
	Label         string    `bun:"label,unique,notnull" json:"label"`
	Rank          int       `bun:"rank,notnull" json:"rank"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// ScoreColumns are the nine category scores shared by results and registrations.
type ScoreColumns struct {
	BasicTechnique *int `bun:"basic_technique" json:"basic_technique"`
	Poomsae        *int `bun:"poomsae" json:"poomsae"`
	Sparring       *int `bun:"sparring" json:"sparring"`
	SelfDefense    *int `bun:"self_defense" json:"self_defense"`
	Breaking       *int `bun:"breaking" json:"breaking"`
	Fitness        *int `bun:"fitness" json:"fitness"`
	Theory         *int `bun:"theory" json:"theory"`
	Discipline     *int `bun:"discipline" json:"discipline"`
	Spirit         *int `bun:"spirit" json:"spirit"`
}

// ExamResult is one candidate's result for one examination. (test_id, user_id) is unique.
type ExamResult struct {
	bun.BaseModel `bun:"table:exam_results,alias:er"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	ImportID      uuid.UUID  `bun:"import_id,notnull,type:uuid" json:"import_id"`
	TestID        int64      `bun:"test_id,notnull" json:"test_id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	ClubUUID      uuid.UUID  `bun:"club_uuid,notnull,type:uuid" json:"club_uuid"`
	BeltUUID      uuid.UUID  `bun:"belt_uuid,notnull,type:uuid" json:"belt_uuid"`
	FullName      string     `bun:"full_name" json:"full_name"`
	Gender        *string    `bun:"gender,nullzero" json:"gender,omitempty"`
	DateOfBirth   *time.Time `bun:"date_of_birth,type:date,nullzero" json:"date_of_birth,omitempty"`
	ScoreColumns
	Composite   float64   `bun:"composite,notnull" json:"composite"`
	Outcome     string    `bun:"outcome,notnull" json:"outcome"`
	Notes       string    `bun:"notes" json:"notes"`
	RequestedBy string    `bun:"requested_by" json:"requested_by"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// TestRegistration is a candidate pre-registered for an examination. (test_id, user_id) is unique.
type TestRegistration struct {
	bun.BaseModel `bun:"table:test_registrations,alias:tr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	ImportID      uuid.UUID  `bun:"import_id,notnull,type:uuid" json:"import_id"`
	TestID        int64      `bun:"test_id,notnull" json:"test_id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	ClubUUID      uuid.UUID  `bun:"club_uuid,notnull,type:uuid" json:"club_uuid"`
	BeltUUID      uuid.UUID  `bun:"belt_uuid,notnull,type:uuid" json:"belt_uuid"`
	FullName      string     `bun:"full_name" json:"full_name"`
	Gender        *string    `bun:"gender,nullzero" json:"gender,omitempty"`
	DateOfBirth   *time.Time `bun:"date_of_birth,type:date,nullzero" json:"date_of_birth,omitempty"`
	ScoreColumns
	Composite   float64   `bun:"composite,notnull" json:"composite"`
	Status      string    `bun:"status,notnull" json:"status"`
	Notes       string    `bun:"notes" json:"notes"`
	RequestedBy string    `bun:"requested_by" json:"requested_by"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
