package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffname,age,active,joined,zip\n" +
		"Ann,31,true,2024-01-02,01234\n" +
		"Bob,,false,2023-11-30,90210\n" +
		"Cy,27.5,yes,2022-06-01\n"

	ds, err := ReadCSV(context.Background(), strings.NewReader(in), ',', 0)
	require.NoError(t, err)

	require.Equal(t, []Column{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeNumber},
		{Name: "active", Type: TypeBool},
		{Name: "joined", Type: TypeDate},
		{Name: "zip", Type: TypeString},
	}, ds.Columns)

	require.Len(t, ds.Rows, 3)
	require.Equal(t, 31.0, ds.Rows[0]["age"])
	require.Nil(t, ds.Rows[1]["age"])
	require.Equal(t, true, ds.Rows[2]["active"])
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ds.Rows[0]["joined"])
	require.Equal(t, "01234", ds.Rows[0]["zip"])
	require.Nil(t, ds.Rows[2]["zip"], "short records are padded")
	require.False(t, ds.Truncated)
}

func TestReadCSVHeaderNames(t *testing.T) {
	ds, err := ReadCSV(context.Background(), strings.NewReader("a,,a\n1,2,3\n"), ',', 0)
	require.NoError(t, err)
	require.Equal(t, "a", ds.Columns[0].Name)
	require.Equal(t, "column_2", ds.Columns[1].Name)
	require.Equal(t, "a_2", ds.Columns[2].Name)
	require.Equal(t, 3.0, ds.Rows[0]["a_2"])
}

func TestReadCSVMaxRows(t *testing.T) {
	ds, err := ReadCSV(context.Background(), strings.NewReader("n\n1\n2\n3\n"), ',', 2)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	require.True(t, ds.Truncated)

	ds, err = ReadCSV(context.Background(), strings.NewReader("n\n1\n2\n"), ',', 2)
	require.NoError(t, err)
	require.False(t, ds.Truncated)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), ',', 0)
	require.ErrorIs(t, err, util.ErrEmptySource)
}

func TestReadCSVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader("n\n1\n"), ',', 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadCSVWindows1252(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("city\tprice\nK\xf6ln\t\x80 5\n"), 0644))

	ds, err := Load(context.Background(), Spec{Path: path})
	require.NoError(t, err)
	require.Equal(t, "Köln", ds.Rows[0]["city"])
	require.Equal(t, "€ 5", ds.Rows[0]["price"])
}

func TestReadJSON(t *testing.T) {
	in := `[
		{"id": 1, "name": "Ann", "tags": ["a"], "when": "2024-01-02T10:00:00Z"},
		{"name": "Bob", "id": 2, "ok": true, "when": null,
		 "subRows": [{"id": 3, "name": "Kid"}]}
	]`
	ds, err := ReadJSON(context.Background(), strings.NewReader(in), 0)
	require.NoError(t, err)

	require.Equal(t, []Column{
		{Name: "id", Type: TypeNumber},
		{Name: "name", Type: TypeString},
		{Name: "tags", Type: TypeString},
		{Name: "when", Type: TypeDate},
		{Name: "ok", Type: TypeBool},
	}, ds.Columns)
	require.True(t, ds.Nested)
	require.Equal(t, 1.0, ds.Rows[0]["id"])
	require.IsType(t, time.Time{}, ds.Rows[0]["when"])

	sub := ds.SubRows()
	require.NotNil(t, sub)
	kids := sub(ds.Rows[1])
	require.Len(t, kids, 1)
	require.Equal(t, 3.0, kids[0]["id"])
	require.Empty(t, sub(ds.Rows[0]))
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(context.Background(), strings.NewReader(`{"a": 1}`), 0)
	require.ErrorIs(t, err, ErrNotArray)

	_, err = ReadJSON(context.Background(), strings.NewReader(`[1, 2]`), 0)
	require.ErrorIs(t, err, ErrNotArray)

	_, err = ReadJSON(context.Background(), strings.NewReader(`[]`), 0)
	require.ErrorIs(t, err, util.ErrEmptySource)
}

func TestReadJSONMaxRows(t *testing.T) {
	ds, err := ReadJSON(context.Background(), strings.NewReader(`[{"a":1},{"a":2},{"a":3}]`), 2)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	require.True(t, ds.Truncated)
	require.Nil(t, ds.SubRows())
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"a.csv":                   FormatCSV,
		"a.TSV":                   FormatTSV,
		"x/y.json":                FormatJSON,
		"postgres://localhost/db": FormatPostgres,
	}
	for path, want := range cases {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := DetectFormat("a.xlsx")
	require.ErrorIs(t, err, util.ErrUnsupportedSource)
}

func TestDelimiter(t *testing.T) {
	require.Equal(t, ',', delimiter(FormatCSV, ""))
	require.Equal(t, '\t', delimiter(FormatTSV, ""))
	require.Equal(t, ';', delimiter(FormatCSV, ";"))
	require.Equal(t, '\t', delimiter(FormatCSV, `\t`))
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Path = "data/orders.csv"
	cfg.Source.Format = "postgres"

	prefs := config.DefaultGlobalConfig()
	prefs.Database.URL = "postgres://localhost/shop"

	spec := FromConfig(cfg, filepath.Join("proj", "grid.toml"), prefs)
	require.Equal(t, filepath.Join("proj", "data", "orders.csv"), spec.Path)
	require.Equal(t, "postgres://localhost/shop", spec.URL)
	require.Equal(t, 10000, spec.MaxRows)
	require.Equal(t, 30*time.Second, spec.Timeout)
}

func TestColumnConfigs(t *testing.T) {
	ds := &Dataset{Columns: []Column{
		{Name: "order_id", Type: TypeNumber},
		{Name: "customer-name", Type: TypeString},
		{Name: "paid", Type: TypeBool},
	}}

	cols := ds.ColumnConfigs()
	require.Equal(t, "Order Id", cols[0].Header)
	require.Equal(t, "number", cols[0].Type)
	require.Equal(t, "range", cols[0].FilterVariant)
	require.Equal(t, "Customer Name", cols[1].Header)
	require.Empty(t, cols[1].Type)
	require.Equal(t, "checkbox", cols[2].FilterVariant)

	defs := ds.ColumnDefs()
	require.Equal(t, grid.TypeNumber, defs[0].DataType)
	require.Equal(t, "order_id", defs[0].AccessorKey)
	require.Equal(t, grid.VariantCheckbox, defs[2].FilterVariant)
}

func TestSQLValue(t *testing.T) {
	require.Equal(t, 3.0, sqlValue(int32(3)))
	require.Equal(t, "abc", sqlValue([]byte("abc")))
	require.Equal(t, "[2 bytes]", sqlValue([]byte{0, 1}))
	require.Nil(t, sqlValue(nil))
	require.Equal(t, "00112233-4455-6677-8899-aabbccddeeff",
		sqlValue([16]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}))

	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.50"))
	require.Equal(t, 12.5, sqlValue(n))
	require.Nil(t, sqlValue(pgtype.Numeric{}))
}

func TestTypeForOID(t *testing.T) {
	require.Equal(t, TypeNumber, typeForOID(pgtype.Int8OID))
	require.Equal(t, TypeBool, typeForOID(pgtype.BoolOID))
	require.Equal(t, TypeDate, typeForOID(pgtype.TimestamptzOID))
	require.Equal(t, TypeString, typeForOID(pgtype.TextOID))
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost:notaport/db")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid connection URL")
}

func TestLoadNotConnected(t *testing.T) {
	_, err := (&DB{}).Load(context.Background(), "select 1", 0)
	require.ErrorIs(t, err, util.ErrNotConnected)
}
