package aggregate

import (
	"testing"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		spec domain.AggregateSpec
		want string
	}{
		{"sum of two columns", domain.AggregateSpec{Type: domain.Sum, Columns: []string{"SAL", "COMM"}}, "sum_SAL_COMM"},
		{"avg keeps column order", domain.AggregateSpec{Type: domain.Avg, Columns: []string{"B", "A"}}, "avg_B_A"},
		{"count without columns", domain.AggregateSpec{Type: domain.Count}, "count_all"},
		{"count with columns", domain.AggregateSpec{Type: domain.Count, Columns: []string{"MGR"}}, "count_MGR"},
		{"alias wins", domain.AggregateSpec{Type: domain.Sum, Columns: []string{"SAL"}, Alias: "total"}, "total"},
		{"lowercase type input", domain.AggregateSpec{Type: "count"}, "count_all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.spec))
			// Labelling is a pure function: repeated calls agree byte for byte.
			assert.Equal(t, Label(tt.spec), Label(tt.spec))
		})
	}
}

func TestLabelsSkipsInapplicable(t *testing.T) {
	specs := []domain.AggregateSpec{
		{Type: domain.Sum},
		{Type: domain.Count},
		{Type: "MEDIAN", Columns: []string{"SAL"}},
		{Type: domain.Avg, Columns: []string{"SAL"}},
	}
	assert.Equal(t, []string{"count_all", "avg_SAL"}, Labels(specs))
}

func TestApplySum(t *testing.T) {
	spec := domain.AggregateSpec{Type: domain.Sum, Columns: []string{"SAL", "COMM"}}

	t.Run("adds numeric values", func(t *testing.T) {
		rows := Apply([]domain.Row{{"SAL": int64(1000), "COMM": "250.5"}}, []domain.AggregateSpec{spec})
		assert.InDelta(t, 1250.5, rows[0]["sum_SAL_COMM"], 1e-9)
	})

	t.Run("skips null and non-numeric", func(t *testing.T) {
		rows := Apply([]domain.Row{{"SAL": 800.0, "COMM": "n/a"}}, []domain.AggregateSpec{spec})
		assert.InDelta(t, 800.0, rows[0]["sum_SAL_COMM"], 1e-9)
	})

	t.Run("all null yields null not zero", func(t *testing.T) {
		rows := Apply([]domain.Row{{"SAL": nil, "COMM": nil}}, []domain.AggregateSpec{spec})
		v, ok := rows[0]["sum_SAL_COMM"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("missing columns yield null", func(t *testing.T) {
		rows := Apply([]domain.Row{{"ENAME": "KING"}}, []domain.AggregateSpec{spec})
		assert.Nil(t, rows[0]["sum_SAL_COMM"])
	})
}

func TestApplyAvg(t *testing.T) {
	spec := domain.AggregateSpec{Type: domain.Avg, Columns: []string{"A", "B", "C"}}

	t.Run("divides by contributing values only", func(t *testing.T) {
		rows := Apply([]domain.Row{{"A": 10, "B": nil, "C": []byte("20")}}, []domain.AggregateSpec{spec})
		assert.InDelta(t, 15.0, rows[0]["avg_A_B_C"], 1e-9)
	})

	t.Run("all null yields null", func(t *testing.T) {
		rows := Apply([]domain.Row{{"A": nil, "B": nil, "C": nil}}, []domain.AggregateSpec{spec})
		assert.Nil(t, rows[0]["avg_A_B_C"])
	})
}

func TestApplyCount(t *testing.T) {
	t.Run("named columns", func(t *testing.T) {
		spec := domain.AggregateSpec{Type: domain.Count, Columns: []string{"MGR", "COMM"}}
		rows := Apply([]domain.Row{{"MGR": 7839, "COMM": nil}}, []domain.AggregateSpec{spec})
		assert.Equal(t, int64(1), rows[0]["count_MGR_COMM"])
	})

	t.Run("whole row counts itself", func(t *testing.T) {
		spec := domain.AggregateSpec{Type: domain.Count}
		rows := Apply([]domain.Row{{"ENAME": "KING", "SAL": 5000}}, []domain.AggregateSpec{spec})
		assert.Equal(t, int64(3), rows[0]["count_all"])
	})

	t.Run("whole row skips nulls", func(t *testing.T) {
		spec := domain.AggregateSpec{Type: domain.Count}
		rows := Apply([]domain.Row{{"ENAME": "KING", "COMM": nil}}, []domain.AggregateSpec{spec})
		assert.Equal(t, int64(2), rows[0]["count_all"])
	})

	t.Run("whole row sees earlier aggregates", func(t *testing.T) {
		specs := []domain.AggregateSpec{
			{Type: domain.Sum, Columns: []string{"SAL"}},
			{Type: domain.Count},
		}
		rows := Apply([]domain.Row{{"ENAME": "KING", "SAL": 5000}}, specs)
		assert.Equal(t, int64(4), rows[0]["count_all"])
	})

	t.Run("whole row does not see later aggregates", func(t *testing.T) {
		specs := []domain.AggregateSpec{
			{Type: domain.Count},
			{Type: domain.Sum, Columns: []string{"SAL"}},
		}
		rows := Apply([]domain.Row{{"ENAME": "KING", "SAL": 5000}}, specs)
		assert.Equal(t, int64(3), rows[0]["count_all"])
	})

	t.Run("null aggregate is not counted", func(t *testing.T) {
		specs := []domain.AggregateSpec{
			{Type: domain.Sum, Columns: []string{"COMM"}},
			{Type: domain.Count},
		}
		rows := Apply([]domain.Row{{"ENAME": "KING", "COMM": nil}}, specs)
		assert.Equal(t, int64(2), rows[0]["count_all"])
	})
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	in := []domain.Row{{"SAL": 100}}
	out := Apply(in, []domain.AggregateSpec{{Type: domain.Count}})

	require.Len(t, out, 1)
	_, added := in[0]["count_all"]
	assert.False(t, added)
	assert.Equal(t, int64(2), out[0]["count_all"])
}

func TestApplyWithoutSpecs(t *testing.T) {
	in := []domain.Row{{"SAL": 100}}
	assert.Equal(t, in, Apply(in, nil))
}
