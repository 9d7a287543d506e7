package variance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

func sample() []model.Variance {
	return []model.Variance{
		{VarianceType: UnmappedAccount, Brand: "TMH"},
		{VarianceType: AmountMismatch, Brand: "TMH"},
		{VarianceType: UnmappedCostCenter, Brand: "RAYMOND"},
		{VarianceType: CountMismatch, Brand: "RAYMOND"},
		{VarianceType: "SOMETHING_NEW", Brand: "TMH"},
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Blocking, Classify(UnmappedAccount))
	assert.Equal(t, Blocking, Classify(" unmapped_cost_center "))
	assert.Equal(t, NonBlocking, Classify(AmountMismatch))
	assert.Equal(t, NonBlocking, Classify(""))
}

func TestCountBlocking(t *testing.T) {
	assert.Equal(t, 2, CountBlocking(sample()))
	assert.Zero(t, CountBlocking(nil))
}

func TestVisibleToBrandControllerHidesCrossBrand(t *testing.T) {
	got := VisibleTo(role.TMHController, sample())
	for _, v := range got {
		assert.False(t, IsCrossBrand(v.VarianceType), v.VarianceType)
		assert.Equal(t, "TMH", v.Brand)
	}
	assert.Len(t, got, 2)
}

func TestVisibleToCorporateKeepsEverything(t *testing.T) {
	vs := sample()
	assert.Equal(t, vs, VisibleTo(role.CorporateReviewer, vs))
}

func TestBlockingFor(t *testing.T) {
	assert.Equal(t, 1, BlockingFor(role.TMH, sample()))
	assert.Equal(t, 1, BlockingFor(role.Raymond, sample()))
}
