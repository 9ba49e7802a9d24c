package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func schemaFor(name string) TableSchema {
	return TableSchema{
		Name: name,
		Columns: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "name", Type: TypeString, Nullable: true},
		},
	}
}

func TestMemCatalog_CreateGetDrop(t *testing.T) {
	c := NewMemCatalog()
	require.NoError(t, c.CreateTable(schemaFor("t")))

	schema, ok := c.GetTable("t")
	require.True(t, ok)
	require.Equal(t, 2, schema.Width())

	existed, err := c.DropTable("t", false)
	require.NoError(t, err)
	require.True(t, existed)

	_, ok = c.GetTable("t")
	require.False(t, ok)
}

func TestMemCatalog_CreateTable_Duplicate(t *testing.T) {
	c := NewMemCatalog()
	require.NoError(t, c.CreateTable(schemaFor("t")))
	require.Error(t, c.CreateTable(schemaFor("t")))
}

func TestMemCatalog_DropTable_NotFound(t *testing.T) {
	c := NewMemCatalog()
	_, err := c.DropTable("missing", false)
	require.Error(t, err)

	existed, err := c.DropTable("missing", true)
	require.NoError(t, err)
	require.False(t, existed)
}
