package tabularcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planFixture struct {
	ID      int64  `tabular:"id,index=0,required"`
	Name    string `tabular:"name,index=1"`
	Ignored string
	Skipped string `tabular:"-"`
}

type nullablePlanFixture struct {
	Name  string     `tabular:"name,index=0"`
	Score *int64     `tabular:"score,index=1"`
	When  time.Time  `tabular:"when,index=2"`
	Tag   *time.Time `tabular:"tag,index=3"`
}

func TestPlanFor_ParsesTagsAndSkipsUntagged(t *testing.T) {
	plan, err := PlanFor(planFixture{})
	require.NoError(t, err)
	require.Len(t, plan.members, 2)

	assert.Equal(t, "id", plan.members[0].name)
	assert.Equal(t, 0, plan.members[0].column)
	assert.True(t, plan.members[0].required)

	assert.Equal(t, "name", plan.members[1].name)
	assert.Equal(t, convText, plan.members[1].converter)
}

func TestPlanFor_CachesByType(t *testing.T) {
	p1, err := PlanFor(planFixture{})
	require.NoError(t, err)
	p2, err := PlanFor(&planFixture{})
	require.NoError(t, err)
	assert.Same(t, p1, p2, "PlanFor must return the cached plan for both value and pointer samples")
}

func TestPlanFor_RejectsNonStruct(t *testing.T) {
	_, err := PlanFor(42)
	require.Error(t, err)
}

func TestPlanFor_NullableAndTimeConverters(t *testing.T) {
	plan, err := PlanFor(nullablePlanFixture{})
	require.NoError(t, err)
	require.Len(t, plan.members, 4)

	assert.Equal(t, convText, plan.members[0].converter)
	assert.False(t, plan.members[0].nullable)

	assert.Equal(t, convInt, plan.members[1].converter)
	assert.True(t, plan.members[1].nullable)

	assert.Equal(t, convTime, plan.members[2].converter)
	assert.False(t, plan.members[2].nullable)

	assert.Equal(t, convTime, plan.members[3].converter)
	assert.True(t, plan.members[3].nullable)
}
