package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeOperator(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := Operator{
		ID:        1,
		Name:      "Servidor",
		EventIDs:  []uint{1},
		UpdatedAt: base,
		Actions:   []OperatorAction{{ID: "a", At: base.Add(-time.Hour)}},
	}

	older := Operator{Name: "Cliente", EventIDs: []uint{2}, UpdatedAt: base.Add(-time.Minute),
		Actions: []OperatorAction{{ID: "b", At: base.Add(-2 * time.Hour)}, {ID: "a", At: base}}}
	merged := MergeOperator(stored, older)
	assert.Equal(t, "Servidor", merged.Name)
	assert.Equal(t, []uint{1}, merged.EventIDs)
	assert.Equal(t, []string{"b", "a"}, actionIDs(merged.Actions))
	// the stored copy of a known action is kept
	assert.True(t, merged.Actions[1].At.Equal(base.Add(-time.Hour)))

	newer := Operator{Name: "Cliente", EventIDs: []uint{2}, UpdatedAt: base.Add(time.Minute)}
	merged = MergeOperator(stored, newer)
	assert.Equal(t, "Cliente", merged.Name)
	assert.Equal(t, []uint{2}, merged.EventIDs)
	assert.True(t, merged.UpdatedAt.Equal(base.Add(time.Minute)))
}

func TestMergeActionsCapsLog(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var actions []OperatorAction
	for i := 0; i < MaxOperatorActions+10; i++ {
		actions = append(actions, OperatorAction{ID: fmt.Sprintf("%04d", i), At: base.Add(time.Duration(i) * time.Second)})
	}

	merged := MergeActions(nil, actions)
	assert.Len(t, merged, MaxOperatorActions)
	assert.Equal(t, "0010", merged[0].ID)
	assert.Equal(t, fmt.Sprintf("%04d", MaxOperatorActions+9), merged[len(merged)-1].ID)
}

func TestCanOperate(t *testing.T) {
	op := Operator{EventIDs: []uint{3, 5}}
	assert.True(t, op.CanOperate(5))
	assert.False(t, op.CanOperate(4))
}

func actionIDs(actions []OperatorAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}
