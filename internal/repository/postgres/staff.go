package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

// staffRow keeps the password hash, which the API model never serializes.
type staffRow struct {
	*model.Staff
	PasswordHash string `json:"password_hash"`
}

type staffRepository struct {
	doc *document[model.Staff]
}

func NewStaffRepository(base BaseRepository) repository.StaffRepository {
	doc := newDocument(base, "staff",
		func(s *model.Staff) *model.Base { return &s.Base },
		[]string{"email", "role"},
		func(s *model.Staff) []interface{} {
			return []interface{}{strings.ToLower(s.Contact.Email), string(s.Role)}
		},
	)
	doc.encode = func(s *model.Staff) ([]byte, error) {
		return json.Marshal(staffRow{Staff: s, PasswordHash: s.PasswordHash})
	}
	doc.decode = func(data []byte) (*model.Staff, error) {
		row := staffRow{Staff: &model.Staff{}}
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		row.Staff.PasswordHash = row.PasswordHash
		return row.Staff, nil
	}
	return &staffRepository{doc: doc}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	return r.doc.insert(ctx, staff)
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	return r.doc.get(ctx, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	return r.doc.first(ctx, "email = $1", strings.ToLower(email))
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	return r.doc.update(ctx, staff)
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.doc.remove(ctx, id)
}

func (r *staffRepository) List(ctx context.Context) ([]*model.Staff, error) {
	return r.doc.list(ctx, "")
}
