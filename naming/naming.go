// Package naming supplies default names for tables, columns and constraints
// of a resolved schema graph.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
)

// Strategy returns default names when a declaration does not carry one.
type Strategy interface {
	// TableName returns the table name for a target. A non-empty given name wins.
	TableName(target, given string) string
	// ColumnName returns the column name for a property. Prefixes are the
	// embedded prefixes from the outermost embed inwards.
	ColumnName(property, given string, prefixes []string) string
	// DiscriminatorColumnName returns the default single-table discriminator column.
	DiscriminatorColumnName() string
	// JoinColumnName returns the local column name of a foreign key.
	JoinColumnName(relation, referencedColumn string) string
	// JoinTableName returns the junction table name of a many-to-many relation.
	JoinTableName(ownerTable, property, inverseTable string) string
	// JoinTableColumnName returns a junction column name for the owner side.
	JoinTableColumnName(table, property, column string) string
	// JoinTableInverseColumnName returns a junction column name for the inverse side.
	JoinTableInverseColumnName(table, property, column string) string
	// ClosureJunctionTableName returns the ancestor/descendant table name of a tree.
	ClosureJunctionTableName(table string) string
	// IndexName returns an index name.
	IndexName(table string, columns []string, where string) string
	// UniqueConstraintName returns a unique constraint name.
	UniqueConstraintName(table string, columns []string) string
	// RelationConstraintName returns the unique constraint name of a one-to-one foreign key.
	RelationConstraintName(table string, columns []string, where string) string
	// CheckConstraintName returns a check constraint name.
	CheckConstraintName(table, expression string) string
	// ExclusionConstraintName returns an exclusion constraint name.
	ExclusionConstraintName(table, expression string) string
	// ForeignKeyName returns a foreign key constraint name.
	ForeignKeyName(table string, columns []string) string
}

// Default is the default naming strategy. Tables are plural snake_case,
// columns are snake_case, and constraint names are short hashes.
type Default struct{}

var _ Strategy = Default{}

// TableName implements Strategy.
//
//	User        => users
//	UserProfile => user_profiles
func (Default) TableName(target, given string) string {
	if given != "" {
		return given
	}
	return Snake(rules.Pluralize(target))
}

// ColumnName implements Strategy.
func (Default) ColumnName(property, given string, prefixes []string) string {
	name := given
	if name == "" {
		name = Snake(property)
	}
	var parts []string
	for _, p := range prefixes {
		if p != "" {
			parts = append(parts, Snake(p))
		}
	}
	return strings.Join(append(parts, name), "_")
}

// DiscriminatorColumnName implements Strategy.
func (Default) DiscriminatorColumnName() string { return "type" }

// JoinColumnName implements Strategy.
//
//	user, id => user_id
func (Default) JoinColumnName(relation, referencedColumn string) string {
	return Snake(relation + "_" + referencedColumn)
}

// JoinTableName implements Strategy.
func (Default) JoinTableName(ownerTable, property, _ string) string {
	return Snake(ownerTable + "_" + strings.ReplaceAll(property, ".", "_"))
}

// JoinTableColumnName implements Strategy.
//
//	posts, id, id => post_id
func (Default) JoinTableColumnName(table, property, column string) string {
	if column == "" {
		column = property
	}
	return Snake(rules.Singularize(table) + "_" + column)
}

// JoinTableInverseColumnName implements Strategy.
func (d Default) JoinTableInverseColumnName(table, property, column string) string {
	return d.JoinTableColumnName(table, property, column)
}

// ClosureJunctionTableName implements Strategy.
func (Default) ClosureJunctionTableName(table string) string {
	return table + "_closure"
}

// IndexName implements Strategy.
func (Default) IndexName(table string, columns []string, where string) string {
	key := table + "_" + joinSorted(columns)
	if where != "" {
		key += "_" + where
	}
	return hashed("IDX_", key)
}

// UniqueConstraintName implements Strategy.
func (Default) UniqueConstraintName(table string, columns []string) string {
	return hashed("UQ_", table+"_"+joinSorted(columns))
}

// RelationConstraintName implements Strategy.
func (Default) RelationConstraintName(table string, columns []string, where string) string {
	key := table + "_" + joinSorted(columns)
	if where != "" {
		key += "_" + where
	}
	return hashed("REL_", key)
}

// CheckConstraintName implements Strategy.
func (Default) CheckConstraintName(table, expression string) string {
	return hashed("CHK_", table+"_"+expression)
}

// ExclusionConstraintName implements Strategy.
func (Default) ExclusionConstraintName(table, expression string) string {
	return hashed("XCL_", table+"_"+expression)
}

// ForeignKeyName implements Strategy.
func (Default) ForeignKeyName(table string, columns []string) string {
	return hashed("FK_", table+"_"+joinSorted(columns))
}

// namespace seeds constraint name hashes.
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("schemagraph"))

// hashed returns prefix followed by the first 26 hex digits of a
// name-based UUID of key.
func hashed(prefix, key string) string {
	id := uuid.NewSHA1(namespace, []byte(key))
	return prefix + strings.ReplaceAll(id.String(), "-", "")[:26]
}

func joinSorted(columns []string) string {
	sorted := append([]string(nil), columns...)
	sort.Strings(sorted)
	return strings.Join(sorted, "_")
}

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML",
		"HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS",
		"RPC", "SLA", "SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP",
		"UI", "UID", "URI", "URL", "UTF8", "UUID", "VM", "XML",
	} {
		rules.AddAcronym(w)
	}
	return rules
}

// Pluralize returns the plural form of a word.
func Pluralize(s string) string { return rules.Pluralize(s) }

// Singularize returns the singular form of a word.
func Singularize(s string) string { return rules.Singularize(s) }

// Snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
//	userID   => user_id
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Pascal converts the given name into a PascalCase.
//
//	user_info => UserInfo
//	full_name => FullName
//	user_id   => UserID
func Pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '.' || r == ' ' })
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, "")
}

var acronyms = map[string]struct{}{
	"API": {}, "HTML": {}, "HTTP": {}, "ID": {}, "IP": {}, "JSON": {},
	"SQL": {}, "UID": {}, "URI": {}, "URL": {}, "UUID": {}, "XML": {},
}
