package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"maya", CorporateReviewer},
		{"LIAM", RaymondController},
		{" ethan ", TMHController},
		{"", Default},
		{"admin", Default},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Parse(tc.in), tc.in)
	}
}

func TestBrandScope(t *testing.T) {
	b, ok := RaymondController.Brand()
	require.True(t, ok)
	assert.Equal(t, Raymond, b)

	_, ok = CorporateReviewer.Brand()
	assert.False(t, ok)
	assert.Equal(t, []Brand{TMH, Raymond}, CorporateReviewer.Brands())
	assert.Equal(t, []Brand{TMH}, TMHController.Brands())
}

func TestPrivileged(t *testing.T) {
	assert.True(t, CorporateReviewer.Privileged())
	assert.False(t, RaymondController.Privileged())
	assert.False(t, TMHController.Privileged())
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), TMHController)
	assert.Equal(t, TMHController, FromContext(ctx))
	assert.Equal(t, Default, FromContext(context.Background()))
}

func TestParseBrand(t *testing.T) {
	b, err := ParseBrand("TMH")
	require.NoError(t, err)
	assert.Equal(t, TMH, b)
	assert.Equal(t, "TMH", b.Display())
	assert.Equal(t, "Raymond", Raymond.Display())

	_, err = ParseBrand("acme")
	assert.Error(t, err)
}
