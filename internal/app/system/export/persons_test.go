package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPersons(t *testing.T) {
	birth := time.Date(1990, time.May, 4, 0, 0, 0, 0, time.UTC)
	fam := int64(7)
	data, err := Persons([]models.Person{
		{ID: 1, FirstName: "Ana", LastName: "Ruiz", Type: models.TypeAdult, Role: models.RoleMember, Status: models.StatusActive, BirthDate: &birth, FamilyID: &fam},
		{ID: 2, FirstName: "Luis", LastName: "Mora", Role: models.RoleVisitor, Status: models.StatusNew},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Nombre", rows[0][1])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "ADULT", rows[1][3])
	assert.Equal(t, "1990-05-04", rows[1][9])
	assert.Equal(t, "7", rows[1][12])
	assert.Equal(t, "VISITOR", rows[2][4])
}

func TestPersons_Empty(t *testing.T) {
	data, err := Persons(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
