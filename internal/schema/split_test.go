package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty segments dropped",
			in:   "A;; B; ",
			want: []string{"A", "B"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "whitespace only",
			in:   " ;\n\t; ",
			want: nil,
		},
		{
			name: "no trailing semicolon",
			in:   "CREATE TABLE a (id int);\nCREATE TABLE b (id int)",
			want: []string{"CREATE TABLE a (id int)", "CREATE TABLE b (id int)"},
		},
		{
			name: "semicolon in string",
			in:   "INSERT INTO t VALUES (';'); SELECT 2",
			want: []string{"INSERT INTO t VALUES (';')", "SELECT 2"},
		},
		{
			name: "doubled quote",
			in:   "SELECT 'it''s; fine'; SELECT 2",
			want: []string{"SELECT 'it''s; fine'", "SELECT 2"},
		},
		{
			name: "escape string",
			in:   `SELECT E'a\';b'; SELECT 2`,
			want: []string{`SELECT E'a\';b'`, "SELECT 2"},
		},
		{
			name: "backslash in standard string",
			in:   `SELECT 'C:\'; SELECT 2`,
			want: []string{`SELECT 'C:\'`, "SELECT 2"},
		},
		{
			name: "quoted identifier",
			in:   `CREATE TABLE "odd;name" (id int); SELECT 1`,
			want: []string{`CREATE TABLE "odd;name" (id int)`, "SELECT 1"},
		},
		{
			name: "dollar quoted body",
			in: "CREATE FUNCTION touch() RETURNS trigger AS $$ BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;\n" +
				"CREATE TRIGGER posts_touch BEFORE UPDATE ON posts FOR EACH ROW EXECUTE FUNCTION touch();",
			want: []string{
				"CREATE FUNCTION touch() RETURNS trigger AS $$ BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql",
				"CREATE TRIGGER posts_touch BEFORE UPDATE ON posts FOR EACH ROW EXECUTE FUNCTION touch()",
			},
		},
		{
			name: "tagged dollar quote containing $$",
			in:   "DO $body$ BEGIN RAISE NOTICE '$$;'; END $body$; SELECT 1",
			want: []string{"DO $body$ BEGIN RAISE NOTICE '$$;'; END $body$", "SELECT 1"},
		},
		{
			name: "positional parameter is not a dollar quote",
			in:   "PREPARE p AS SELECT $1; EXECUTE p(1)",
			want: []string{"PREPARE p AS SELECT $1", "EXECUTE p(1)"},
		},
		{
			name: "comments removed and comment-only segments dropped",
			in:   "-- posts; v1\nCREATE TABLE t (id int); -- trailing\n/* block; */",
			want: []string{"CREATE TABLE t (id int)"},
		},
		{
			name: "nested block comment",
			in:   "/* outer /* inner; */ still; */ SELECT 1",
			want: []string{"SELECT 1"},
		},
		{
			name: "inline line comment keeps newline",
			in:   "SELECT 1 -- one\n+ 2",
			want: []string{"SELECT 1 \n+ 2"},
		},
		{
			name: "block comment separates tokens",
			in:   "SELECT 1/*x*/FROM t",
			want: []string{"SELECT 1 FROM t"},
		},
		{
			name: "comment markers inside strings are text",
			in:   "SELECT '--not a comment; /* nor this */'",
			want: []string{"SELECT '--not a comment; /* nor this */'"},
		},
		{
			name: "unterminated string runs to end",
			in:   "SELECT 'abc; def",
			want: []string{"SELECT 'abc; def"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}
