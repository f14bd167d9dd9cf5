package admin

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/curio-learn/profile-service/internal/repositories"
)

func TestSite_Register(t *testing.T) {
	site := DefaultSite()

	m, err := site.Get("studentdata")
	require.NoError(t, err)
	assert.Equal(t, DefaultListPerPage, m.ListPerPage)
	assert.Equal(t, []string{"user", "age", "subjects", "grade"}, m.ListFilter)

	_, err = site.Get("auth_user")
	assert.ErrorIs(t, err, ErrModelNotRegistered)

	assert.ErrorIs(t, site.Register(UserProfileAdmin()), ErrAlreadyRegistered)

	names := []string{}
	for _, m := range site.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"userprofile", "studentdata"}, names)
}

func TestModelAdmin_ParseChangeList(t *testing.T) {
	tests := []struct {
		name    string
		admin   *ModelAdmin
		query   string
		want    *ChangeListParams
		wantErr bool
	}{
		{
			name:  "defaults",
			admin: StudentDataAdmin(),
			query: "",
			want: &ChangeListParams{
				Page: 1, PerPage: 100,
				Query: repositories.ChangeListQuery{Ordering: []string{"user", "age"}, Limit: 100},
			},
		},
		{
			name:  "search filters and page",
			admin: StudentDataAdmin(),
			query: "q=ali&age=16&grade__isnull=1&p=3&per_page=10",
			want: &ChangeListParams{
				Page: 3, PerPage: 10,
				Query: repositories.ChangeListQuery{
					Search:       "ali",
					SearchFields: []string{"user__username"},
					Filters: []repositories.FieldFilter{
						{Field: "age", Value: "16"},
						{Field: "grade", Value: "1", IsNull: true},
					},
					Ordering: []string{"user", "age"},
					Limit:    10,
					Offset:   20,
				},
			},
		},
		{
			name:  "ordering override keeps displayed columns only",
			admin: StudentDataAdmin(),
			query: "o=-age,password,subjects",
			want: &ChangeListParams{
				Page: 1, PerPage: 100,
				Query: repositories.ChangeListQuery{Ordering: []string{"-age", "subjects"}, Limit: 100},
			},
		},
		{
			name:  "per_page is capped",
			admin: UserProfileAdmin(),
			query: "per_page=10000",
			want: &ChangeListParams{
				Page: 1, PerPage: MaxListPerPage,
				Query: repositories.ChangeListQuery{Ordering: []string{"id"}, Limit: MaxListPerPage},
			},
		},
		{
			name:  "search ignored without search fields",
			admin: UserProfileAdmin(),
			query: "q=alice",
			want: &ChangeListParams{
				Page: 1, PerPage: 100,
				Query: repositories.ChangeListQuery{Ordering: []string{"id"}, Limit: 100},
			},
		},
		{name: "filter not declared", admin: UserProfileAdmin(), query: "streak_days=5", wantErr: true},
		{name: "bad page", admin: StudentDataAdmin(), query: "p=0", wantErr: true},
		{name: "bad per_page", admin: StudentDataAdmin(), query: "per_page=many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.admin
			m.ListPerPage = DefaultListPerPage

			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := m.ParseChangeList(values)
			if tt.wantErr {
				assert.ErrorIs(t, err, repositories.ErrInvalidLookup)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelAdmin_BuildRow(t *testing.T) {
	m := UserProfileAdmin()
	rep := map[string]interface{}{
		"id":          float64(4),
		"user":        float64(7),
		"streak_days": float64(5),
		"skill_level": nil,
	}

	row := m.BuildRow(rep, "alice")

	assert.Equal(t, "alice", row["user"])
	assert.Equal(t, float64(4), row["id"])
	assert.Equal(t, float64(5), row["streak_days"])
	assert.Contains(t, row, "skill_level")
	assert.Len(t, row, len(m.ListDisplay)+1)
}

func TestModelAdmin_WriteXLSX(t *testing.T) {
	m := StudentDataAdmin()
	rows := []Row{
		{"id": 1, "user": "alice", "age": 16, "subjects": "math"},
		{"id": 2, "user": "bob", "age": nil},
	}

	var buf bytes.Buffer
	require.NoError(t, m.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("studentdata")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, m.ListDisplay, got[0])
	assert.Equal(t, []string{"alice", "16"}, got[1][:2])
	assert.Equal(t, "bob", got[2][0])
}
