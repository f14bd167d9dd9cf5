package serializers

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/validator"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func date(s string) *datatypes.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	d := datatypes.Date(t)
	return &d
}

func TestUserProfileSerializer_Representation(t *testing.T) {
	s := NewUserProfileSerializer(validator.New())
	profile := &models.UserProfile{
		ID:          1,
		UserID:      7,
		User:        &models.User{ID: 7, Username: "alice"},
		StreakDays:  intPtr(5),
		TotalPoints: intPtr(100),
	}

	data, err := json.Marshal(s.ToRepresentation(profile))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.EqualValues(t, 5, out["streak_days"])
	assert.EqualValues(t, 100, out["total_points"])
	assert.EqualValues(t, 7, out["user"])
	for _, key := range []string{"completed_modules", "content_library", "skill_level", "quiz_history", "target_completion_date"} {
		v, ok := out[key]
		assert.True(t, ok, "missing key %s", key)
		assert.Nil(t, v, "key %s", key)
	}
	assert.Len(t, out, len(UserProfileFields))
}

func TestUserProfileSerializer_RoundTrip(t *testing.T) {
	s := NewUserProfileSerializer(validator.New())

	tests := []struct {
		name    string
		profile *models.UserProfile
	}{
		{"all null", &models.UserProfile{ID: 1, UserID: 2}},
		{"all set", &models.UserProfile{
			ID:                   3,
			UserID:               4,
			CompletedModules:     strPtr("algebra,geometry"),
			ContentLibrary:       strPtr("videos"),
			SkillLevel:           strPtr("intermediate"),
			QuizHistory:          strPtr("q1:80,q2:95"),
			StreakDays:           intPtr(0),
			TotalPoints:          intPtr(1200),
			TargetCompletionDate: date("2025-12-31"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ToInternal(s.ToRepresentation(tt.profile))
			require.NoError(t, err)
			assert.Equal(t, tt.profile, got)

			// Through JSON as well
			data, err := json.Marshal(s.ToRepresentation(tt.profile))
			require.NoError(t, err)
			rep, err := s.Decode(data)
			require.NoError(t, err)
			got, err = s.ToInternal(rep)
			require.NoError(t, err)
			assert.Equal(t, tt.profile, got)
		})
	}
}

func TestStudentDataSerializer_RoundTrip(t *testing.T) {
	s := NewStudentDataSerializer(validator.New())
	record := &models.StudentData{
		ID:                   9,
		UserID:               2,
		Age:                  intPtr(17),
		Grade:                strPtr("SS3"),
		EducationBackground:  strPtr("secondary"),
		DifficultyPreference: strPtr("hard"),
		FeedbackPreference:   strPtr("detailed"),
		CurrentSkillLevel:    strPtr("advanced"),
		StudyEnvironment:     strPtr("quiet"),
		LearningChallenges:   nil,
		LearningStyle:        strPtr("visual"),
		Motivation:           strPtr("exams"),
		StudyTime:            strPtr("evening"),
		PrimaryGoal:          strPtr("JAMB"),
		ShortTermGoal:        nil,
		LongTermGoal:         strPtr("medicine"),
		StudyDays:            strPtr("mon,wed,fri"),
		Subjects:             strPtr("biology,chemistry"),
		TargetCompletionDate: date("2024-06-01"),
	}

	rep := s.ToRepresentation(record)
	assert.Equal(t, "2024-06-01", *rep.TargetCompletionDate)

	got, err := s.ToInternal(rep)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestStudentDataSerializer_ToInternalValidation(t *testing.T) {
	s := NewStudentDataSerializer(validator.New())

	tests := []struct {
		name      string
		body      string
		wantField string
		wantRule  string
	}{
		{"missing user", `{"age": 12}`, "user", "required"},
		{"age not an integer", `{"user": 1, "age": "twelve"}`, "age", "type"},
		{"age fractional", `{"user": 1, "age": 12.5}`, "age", "type"},
		{"age above int32", `{"user": 1, "age": 2147483648}`, "age", "max"},
		{"age below int32", `{"user": 1, "age": -2147483649}`, "age", "min"},
		{"grade too long", `{"user": 1, "grade": "` + strings.Repeat("x", 101) + `"}`, "grade", "max"},
		{"bad date", `{"user": 1, "target_completion_date": "01/06/2024"}`, "target_completion_date", "calendar_date"},
		{"malformed body", `{"user": `, "body", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := s.Decode([]byte(tt.body))
			if err == nil {
				_, err = s.ToInternal(rep)
			}
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field)
			assert.Equal(t, tt.wantRule, verrs[0].Rule)
		})
	}
}

func TestUserProfileSerializer_IntegerRange(t *testing.T) {
	s := NewUserProfileSerializer(validator.New())

	_, err := s.ToInternal(&UserProfileRepresentation{User: 1, TotalPoints: intPtr(2147483647), StreakDays: intPtr(-2147483648)})
	assert.NoError(t, err)

	_, err = s.ToInternal(&UserProfileRepresentation{User: 1, TotalPoints: intPtr(2147483648)})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "total_points", verrs[0].Field)
	assert.Equal(t, "must be at most 2147483647", verrs[0].Message)
}

func TestStudentDataSerializer_MaxLengthCountsCharacters(t *testing.T) {
	s := NewStudentDataSerializer(validator.New())

	_, err := s.ToInternal(&StudentDataRepresentation{User: 1, Grade: strPtr(strings.Repeat("é", 100))})
	assert.NoError(t, err)
}

func TestChangedFields(t *testing.T) {
	before := &StudentDataRepresentation{ID: 1, User: 2, Age: intPtr(10), Grade: strPtr("5")}
	after := &StudentDataRepresentation{ID: 1, User: 2, Age: intPtr(11), Subjects: strPtr("math")}

	changed, err := ChangedFields(before, after, StudentDataFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "grade", "subjects"}, changed)
}
