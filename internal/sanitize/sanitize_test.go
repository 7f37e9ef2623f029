package sanitize

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "age", "age"},
		{"space", "First Name", "first_name"},
		{"mixed case", "UserID", "userid"},
		{"punctuation", "amount ($)", "amount____"},
		{"hyphen", "created-at", "created_at"},
		{"digit leading kept", "2020_sales", "2020_sales"},
		{"underscore preserved", "a_b", "a_b"},
		{"unicode replaced", "prénom", "pr_nom"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnName(tt.raw))
		})
	}
}

func TestColumnName_Deterministic(t *testing.T) {
	raw := "Zip/Postal Code"
	first := ColumnName(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ColumnName(raw))
	}
}

func TestColumnNames_PreservesOrderAndCardinality(t *testing.T) {
	raw := []string{"First Name", "Age", "Email Address"}
	got := ColumnNames(raw)

	require.Len(t, got, len(raw))
	assert.Equal(t, []string{"first_name", "age", "email_address"}, got)
}

func TestColumnNames_DuplicatesGetSuffix(t *testing.T) {
	raw := []string{"Name", "name", "NAME", "name_2"}
	got := ColumnNames(raw)

	require.Len(t, got, 4)
	assert.Equal(t, "name", got[0])
	assert.Equal(t, "name_2", got[1])
	assert.Equal(t, "name_3", got[2])
	// The literal "name_2" header collides with the generated suffix form
	// and is pushed to the next free slot.
	assert.Equal(t, "name_2_2", got[3])

	seen := map[string]bool{}
	for _, n := range got {
		assert.False(t, seen[n], "duplicate sanitized name %q", n)
		seen[n] = true
	}
}

func TestColumnNames_EmptyAndUnderscoreOnly(t *testing.T) {
	got := ColumnNames([]string{"", "!!!", "ok"})

	assert.Equal(t, []string{"col_1", "col_2", "ok"}, got)
}

func TestColumnName_TruncatesToIdentifierLimit(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := ColumnName(long)
	assert.Len(t, got, 63)
}

func TestColumnNames_TruncatedDuplicatesStayDistinct(t *testing.T) {
	long := strings.Repeat("b", 100)
	got := ColumnNames([]string{long, long + "x"})

	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
	assert.LessOrEqual(t, len(got[1]), 63)
}

func TestTableName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prefixed", "data_People", "data_people"},
		{"spaces and dots", "data_sales report.v2", "data_sales_report_v2"},
		{"already clean", "data_people", "data_people"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TableName(tt.raw))
		})
	}
}

func TestSanitizer_AllowedScript(t *testing.T) {
	s := New(Allow(unicode.Hangul))

	assert.Equal(t, "이름", s.ColumnName("이름"))
	assert.Equal(t, "이름_x", s.ColumnName("이름 X"))

	// Default sanitizer still substitutes the same input.
	assert.Equal(t, "__", ColumnName("이름"))
}
