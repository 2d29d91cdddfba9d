package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Username", "username"},
		{"FullName", "full_name"},
		{"HTTPCode", "http_code"},
		{"userID", "user_id"},
		{"user_id", "user_id"},
		{"UserProfiles", "user_profiles"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Snake(tt.in), tt.in)
	}
}

func TestPascal(t *testing.T) {
	assert.Equal(t, "UserInfo", Pascal("user_info"))
	assert.Equal(t, "UserID", Pascal("user_id"))
	assert.Equal(t, "AddressCity", Pascal("address.city"))
}

func TestDefaultTableName(t *testing.T) {
	var d Default
	assert.Equal(t, "users", d.TableName("User", ""))
	assert.Equal(t, "user_profiles", d.TableName("UserProfile", ""))
	assert.Equal(t, "categories", d.TableName("Category", ""))
	assert.Equal(t, "people_tbl", d.TableName("Person", "people_tbl"))
}

func TestDefaultColumnName(t *testing.T) {
	var d Default
	assert.Equal(t, "first_name", d.ColumnName("firstName", "", nil))
	assert.Equal(t, "fname", d.ColumnName("firstName", "fname", nil))
	assert.Equal(t, "address_city", d.ColumnName("city", "", []string{"address"}))
	assert.Equal(t, "home_address_zip", d.ColumnName("zip", "", []string{"home", "", "address"}))
}

func TestDefaultJoinNames(t *testing.T) {
	var d Default
	assert.Equal(t, "user_id", d.JoinColumnName("user", "id"))
	assert.Equal(t, "author_uuid", d.JoinColumnName("author", "uuid"))
	assert.Equal(t, "posts_categories", d.JoinTableName("posts", "categories", "categories"))
	assert.Equal(t, "users_profile_tags", d.JoinTableName("users", "profile.tags", "tags"))
	assert.Equal(t, "post_id", d.JoinTableColumnName("posts", "id", "id"))
	assert.Equal(t, "category_id", d.JoinTableInverseColumnName("categories", "id", "id"))
	assert.Equal(t, "categories_closure", d.ClosureJunctionTableName("categories"))
	assert.Equal(t, "type", d.DiscriminatorColumnName())
}

func TestDefaultConstraintNames(t *testing.T) {
	var d Default
	tests := []struct {
		name   string
		got    string
		prefix string
	}{
		{"index", d.IndexName("users", []string{"email"}, ""), "IDX_"},
		{"unique", d.UniqueConstraintName("users", []string{"email"}), "UQ_"},
		{"relation", d.RelationConstraintName("profiles", []string{"user_id"}, ""), "REL_"},
		{"check", d.CheckConstraintName("users", "age > 0"), "CHK_"},
		{"exclusion", d.ExclusionConstraintName("rooms", "USING gist (room WITH =)"), "XCL_"},
		{"foreign key", d.ForeignKeyName("profiles", []string{"user_id"}), "FK_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, strings.HasPrefix(tt.got, tt.prefix), tt.got)
			assert.Len(t, tt.got, len(tt.prefix)+26)
		})
	}

	t.Run("deterministic and order independent", func(t *testing.T) {
		a := d.IndexName("users", []string{"first", "last"}, "")
		b := d.IndexName("users", []string{"last", "first"}, "")
		assert.Equal(t, a, b)
		assert.NotEqual(t, a, d.IndexName("users", []string{"first", "last"}, "first IS NOT NULL"))
		assert.NotEqual(t, a, d.IndexName("accounts", []string{"first", "last"}, ""))
	})
}
