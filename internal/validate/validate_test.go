package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Valid(t *testing.T) {
	body := `{"verdict":"approve","summary":"Plan looks solid","findings":[{"severity":"minor","category":"style","description":"Consider renaming","file":null,"line":null,"suggestion":null}]}`
	r, err := Plan(body)
	require.NoError(t, err)
	assert.Equal(t, "approve", string(r.Verdict))
	require.Len(t, r.Findings, 1)
}

func TestPlan_MalformedJSON(t *testing.T) {
	_, err := Plan("not json {{{")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")
}

func TestPlan_RejectsCodeOnlySeverity(t *testing.T) {
	body := `{"verdict":"approve","summary":"x","findings":[{"severity":"nitpick","category":"c","description":"d"}]}`
	_, err := Plan(body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid for plan")
}

func TestCode_RequiresFileAndLine(t *testing.T) {
	body := `{"verdict":"request_changes","summary":"x","findings":[{"severity":"critical","category":"bug","description":"d","file":null,"line":null}]}`
	_, err := Code(body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must set both file and line")
}

func TestCode_RejectsPlanOnlySeverity(t *testing.T) {
	body := `{"verdict":"approve","summary":"x","findings":[{"severity":"suggestion","category":"c","description":"d","file":"a.go","line":1}]}`
	_, err := Code(body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid for code")
}

func TestPrecommit_Valid(t *testing.T) {
	body := `{"ready_to_commit":false,"blockers":["Missing error handling"],"warnings":[]}`
	r, err := Precommit(body)
	require.NoError(t, err)
	assert.False(t, r.ReadyToCommit)
	assert.Equal(t, []string{"Missing error handling"}, r.Blockers)
}
