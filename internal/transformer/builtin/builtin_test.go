package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvclean/internal/config"
	"csvclean/internal/table"
)

func mustTable(t *testing.T, cols []string, rows ...[]any) *table.Table {
	t.Helper()
	tb, err := table.New(cols)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, tb.AppendRow(r))
	}
	return tb
}

func TestNormalizeHeaders(t *testing.T) {
	tb := mustTable(t, []string{"Flat Rate (Non-Contract)", "Café"})

	step, err := FromConfig(config.Transform{Kind: "normalize_headers", Options: config.Options{}}, 0)
	require.NoError(t, err)
	require.NoError(t, step.Apply(context.Background(), tb))
	assert.Equal(t, []string{"flat_rate_non_contract", "caf"}, tb.Columns)

	tb = mustTable(t, []string{"Café"})
	step, err = FromConfig(config.Transform{Kind: "normalize_headers", Options: config.Options{"fold_accents": true}}, 0)
	require.NoError(t, err)
	require.NoError(t, step.Apply(context.Background(), tb))
	assert.Equal(t, []string{"cafe"}, tb.Columns)
}

func TestNormalizeHeaders_Collision(t *testing.T) {
	tb := mustTable(t, []string{"Zip Code", "ZIP-CODE"})
	err := NormalizeHeaders{}.Apply(context.Background(), tb)
	assert.ErrorIs(t, err, table.ErrDuplicateColumn)
}

func TestTrim(t *testing.T) {
	tb := mustTable(t, []string{"a", "b", "c", "d"},
		[]any{" foo ", "bar" + nbsp, nil, nbsp + " "},
		[]any{"x" + nbsp + "y", "\tq\n", "ok", "z"},
	)
	require.NoError(t, Trim{}.Apply(context.Background(), tb))
	assert.Equal(t, [][]any{
		{"foo", "bar", nil, nil},
		{"x y", "q", "ok", "z"},
	}, tb.Rows)
}

func TestHasEdgeSpace(t *testing.T) {
	assert.False(t, HasEdgeSpace(""))
	assert.False(t, HasEdgeSpace("a b"))
	assert.True(t, HasEdgeSpace(" a"))
	assert.True(t, HasEdgeSpace("a\n"))
}

func TestDropAndKeep(t *testing.T) {
	tb := mustTable(t, []string{"id", "name", "tags"}, []any{"1", "Acme", "t"})

	step, err := FromConfig(config.Transform{Kind: "drop", Options: config.Options{"columns": []any{"tags", "store_number"}}}, 0)
	require.NoError(t, err)
	require.NoError(t, step.Apply(context.Background(), tb))
	assert.Equal(t, []string{"id", "name"}, tb.Columns)
	assert.Equal(t, []string{"tags"}, step.(*Drop).Dropped)

	step, err = FromConfig(config.Transform{Kind: "keep", Options: config.Options{"columns": []any{"name"}}}, 0)
	require.NoError(t, err)
	require.NoError(t, step.Apply(context.Background(), tb))
	assert.Equal(t, []string{"name"}, tb.Columns)
	assert.Equal(t, [][]any{{"Acme"}}, tb.Rows)
}

func TestSplitPattern_FromConfig(t *testing.T) {
	tests := []struct {
		name    string
		options config.Options
		in      string
		want    []any
	}{
		{
			name:    "default_designators",
			options: config.Options{"column": "street", "into": []any{"location_street", "unit"}},
			in:      "123 Main St Suite 200",
			want:    []any{"123 Main St", "Suite 200"},
		},
		{
			name:    "default_no_match",
			options: config.Options{"column": "street", "into": []any{"location_street", "unit"}},
			in:      "123 Main St",
			want:    []any{"123 Main St", ""},
		},
		{
			name: "custom_designators",
			options: config.Options{
				"column": "street", "into": []any{"location_street", "unit"},
				"designators": []any{"Bldg"},
			},
			in:   "4 Oak Rd Bldg C",
			want: []any{"4 Oak Rd", "Bldg C"},
		},
		{
			name: "custom_pattern_and_policy",
			options: config.Options{
				"column": "street", "into": []any{"num", "rest"},
				"pattern":  `^(\d+)\s+(.*)$`,
				"no_match": map[string]any{"first": "empty", "second": "original"},
			},
			in:   "Main St",
			want: []any{"", "Main St"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := mustTable(t, []string{"street"}, []any{tt.in})
			step, err := FromConfig(config.Transform{Kind: "split_pattern", Options: tt.options}, 2)
			require.NoError(t, err)
			require.NoError(t, step.Apply(context.Background(), tb))
			assert.Equal(t, tt.want, tb.Rows[0])
		})
	}
}

func TestSplitDelimiter_FromConfig(t *testing.T) {
	tb := mustTable(t, []string{"description", "price"},
		[]any{"HVAC1 Flat rate diagnostic", "89"},
		[]any{"HVAC2", "120"},
		[]any{nil, "0"},
	)
	step, err := FromConfig(config.Transform{Kind: "split_delimiter", Options: config.Options{
		"column": "description", "into": []string{"code", "description"},
	}}, 0)
	require.NoError(t, err)
	require.NoError(t, step.Apply(context.Background(), tb))

	assert.Equal(t, []string{"description", "price", "code"}, tb.Columns)
	assert.Equal(t, [][]any{
		{"Flat rate diagnostic", "89", "HVAC1"},
		{"", "120", "HVAC2"},
		{nil, "0", nil},
	}, tb.Rows)
}

func TestSplit_MissingColumn(t *testing.T) {
	tb := mustTable(t, []string{"city"}, []any{"Atlanta"})
	step, err := FromConfig(config.Transform{Kind: "split_pattern", Options: config.Options{
		"column": "street", "into": []any{"location_street", "unit"},
	}}, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, step.Apply(context.Background(), tb), table.ErrColumnNotFound)
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		tc   config.Transform
	}{
		{name: "unknown_kind", tc: config.Transform{Kind: "dedup", Options: config.Options{}}},
		{name: "bad_regex", tc: config.Transform{Kind: "split_pattern", Options: config.Options{
			"column": "a", "into": []any{"b", "c"}, "pattern": "^(",
		}}},
		{name: "bad_policy", tc: config.Transform{Kind: "split_pattern", Options: config.Options{
			"column": "a", "into": []any{"b", "c"}, "no_match": map[string]any{"first": "null"},
		}}},
		{name: "missing_column", tc: config.Transform{Kind: "split_delimiter", Options: config.Options{
			"into": []any{"b", "c"},
		}}},
		{name: "three_targets", tc: config.Transform{Kind: "split_delimiter", Options: config.Options{
			"column": "a", "into": []any{"b", "c", "d"},
		}}},
		{name: "two_splits", tc: config.Transform{Kind: "split_delimiter", Options: config.Options{
			"column": "a", "into": []any{"b", "c"}, "max_splits": float64(2),
		}}},
		{name: "empty_delimiter", tc: config.Transform{Kind: "split_delimiter", Options: config.Options{
			"column": "a", "into": []any{"b", "c"}, "delimiter": "",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.tc, 0)
			assert.Error(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	p, err := config.Recipe("customer", "in.csv", "", nil)
	require.NoError(t, err)
	chain, err := Build(p)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "normalize_headers", chain[0].Name())
	assert.Equal(t, "drop", chain[1].Name())
	assert.Equal(t, "split_pattern", chain[2].Name())

	p.Transform = append(p.Transform, config.Transform{Kind: "nope", Options: config.Options{}})
	_, err = Build(p)
	assert.ErrorContains(t, err, "transform[3]")
}
