package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

func seedStudentData(t *testing.T, repo repositories.Repository) map[string]*models.StudentData {
	t.Helper()
	ctx := context.Background()

	rows := []struct {
		username string
		age      *int
		grade    *string
		subjects *string
	}{
		{"alice", intPtr(16), strPtr("10"), strPtr("math")},
		{"alicia", intPtr(14), strPtr("8"), strPtr("science")},
		{"bob", intPtr(16), strPtr("10"), strPtr("math")},
		{"carol", nil, nil, strPtr("art")},
	}

	out := make(map[string]*models.StudentData, len(rows))
	for _, row := range rows {
		u := createUser(t, repo, row.username)
		sd := &models.StudentData{UserID: u.ID, Age: row.age, Grade: row.grade, Subjects: row.subjects}
		require.NoError(t, repo.StudentData().Create(ctx, sd))
		out[row.username] = sd
	}
	return out
}

func TestStudentDataRepository_ChangeList(t *testing.T) {
	repo := newTestRepository(t)
	seeded := seedStudentData(t, repo)

	tests := []struct {
		name      string
		query     repositories.ChangeListQuery
		wantUsers []string
		wantTotal int64
	}{
		{
			name:      "search by username substring",
			query:     repositories.ChangeListQuery{Search: "ali", SearchFields: []string{"user__username"}, Ordering: []string{"user", "age"}},
			wantUsers: []string{"alice", "alicia"},
			wantTotal: 2,
		},
		{
			name:      "search is case insensitive",
			query:     repositories.ChangeListQuery{Search: "BOB", SearchFields: []string{"user__username"}},
			wantUsers: []string{"bob"},
			wantTotal: 1,
		},
		{
			name:      "search wildcard is literal",
			query:     repositories.ChangeListQuery{Search: "%", SearchFields: []string{"user__username"}},
			wantUsers: []string{},
			wantTotal: 0,
		},
		{
			name:      "filter by age",
			query:     repositories.ChangeListQuery{Filters: []repositories.FieldFilter{{Field: "age", Value: "16"}}, Ordering: []string{"user"}},
			wantUsers: []string{"alice", "bob"},
			wantTotal: 2,
		},
		{
			name:      "filter combined with search",
			query:     repositories.ChangeListQuery{Search: "ali", SearchFields: []string{"user__username"}, Filters: []repositories.FieldFilter{{Field: "subjects", Value: "math"}}},
			wantUsers: []string{"alice"},
			wantTotal: 1,
		},
		{
			name:      "null age",
			query:     repositories.ChangeListQuery{Filters: []repositories.FieldFilter{{Field: "age", IsNull: true, Value: "1"}}},
			wantUsers: []string{"carol"},
			wantTotal: 1,
		},
		{
			name:      "descending ordering",
			query:     repositories.ChangeListQuery{Ordering: []string{"-user"}},
			wantUsers: []string{"carol", "bob", "alicia", "alice"},
			wantTotal: 4,
		},
		{
			name:      "page",
			query:     repositories.ChangeListQuery{Ordering: []string{"user"}, Limit: 2, Offset: 2},
			wantUsers: []string{"bob", "carol"},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, err := repo.StudentData().ChangeList(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			got := make([]string, 0, len(rows))
			for _, row := range rows {
				require.NotNil(t, row.User)
				assert.Equal(t, seeded[row.User.Username].ID, row.ID)
				got = append(got, row.User.Username)
			}
			assert.Equal(t, tt.wantUsers, got)
		})
	}
}

func TestStudentDataRepository_ChangeListInvalidLookup(t *testing.T) {
	repo := newTestRepository(t)

	_, _, err := repo.StudentData().ChangeList(context.Background(), repositories.ChangeListQuery{
		Filters: []repositories.FieldFilter{{Field: "password", Value: "x"}},
	})
	assert.ErrorIs(t, err, repositories.ErrInvalidLookup)

	_, _, err = repo.StudentData().ChangeList(context.Background(), repositories.ChangeListQuery{
		Filters: []repositories.FieldFilter{{Field: "age", Value: "old"}},
	})
	assert.ErrorIs(t, err, repositories.ErrInvalidLookup)

	_, _, err = repo.StudentData().ChangeList(context.Background(), repositories.ChangeListQuery{
		Search:       "example.com",
		SearchFields: []string{"user__email"},
	})
	assert.ErrorIs(t, err, repositories.ErrInvalidLookup)
}

func TestStudentDataRepository_FilterChoices(t *testing.T) {
	repo := newTestRepository(t)
	seedStudentData(t, repo)
	createUser(t, repo, "dave") // owns nothing
	ctx := context.Background()

	users, err := repo.StudentData().FilterChoices(ctx, "user")
	require.NoError(t, err)
	labels := make([]string, 0, len(users))
	for _, c := range users {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"alice", "alicia", "bob", "carol"}, labels)

	grades, err := repo.StudentData().FilterChoices(ctx, "grade")
	require.NoError(t, err)
	assert.Equal(t, []repositories.FilterChoice{{Value: "10", Label: "10"}, {Value: "8", Label: "8"}}, grades)

	ages, err := repo.StudentData().FilterChoices(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, []repositories.FilterChoice{{Value: "14", Label: "14"}, {Value: "16", Label: "16"}}, ages)

	_, err = repo.StudentData().FilterChoices(ctx, "target_completion_date")
	assert.ErrorIs(t, err, repositories.ErrInvalidLookup)
}

func TestStudentDataRepository_UpdateMovesOwner(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	sd := &models.StudentData{UserID: alice.ID, Motivation: strPtr("career")}
	require.NoError(t, repo.StudentData().Create(ctx, sd))

	sd.UserID = bob.ID
	require.NoError(t, repo.StudentData().Update(ctx, sd))

	_, err := repo.StudentData().GetByUserID(ctx, alice.ID)
	assert.True(t, repositories.IsNotFoundError(err))

	got, err := repo.StudentData().GetByUserID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "career", *got.Motivation)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.StudentData().Create(ctx, &models.StudentData{UserID: alice.ID}); err != nil {
			return err
		}
		return tx.StudentData().Create(ctx, &models.StudentData{UserID: alice.ID})
	})
	require.Error(t, err)

	_, err = repo.StudentData().GetByUserID(ctx, alice.ID)
	assert.True(t, repositories.IsNotFoundError(err))
}
