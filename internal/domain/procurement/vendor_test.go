package procurement

import (
	"testing"

	"github.com/procura/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendor(t *testing.T) {
	v, err := NewVendor(VendorDetails{
		Name:         " Figma ",
		Website:      "https://figma.com",
		ContactEmail: "Sales@Figma.com",
		Category:     "Design tools",
	})

	require.NoError(t, err)
	assert.Equal(t, "Figma", v.Name)
	assert.Equal(t, "sales@figma.com", v.ContactEmail)
	assert.True(t, v.Active)

	_, err = NewVendor(VendorDetails{Name: ""})
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))

	_, err = NewVendor(VendorDetails{Name: "X", Website: "ftp://x.io"})
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
}

func TestVendor_UpdateAndDeactivate(t *testing.T) {
	v, err := NewVendor(VendorDetails{Name: "Figma"})
	require.NoError(t, err)

	require.NoError(t, v.Update(VendorDetails{Name: "Figma Inc", Category: "Design"}))
	assert.Equal(t, "Figma Inc", v.Name)
	assert.Equal(t, 2, v.GetVersion())

	err = v.Update(VendorDetails{Name: ""})
	assert.Error(t, err)
	assert.Equal(t, "Figma Inc", v.Name)

	require.NoError(t, v.Deactivate())
	assert.False(t, v.Active)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(v.Deactivate()))
}
