package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
)

const header = "kecamatan,kelurahan,jenis_odp,tahun,bulan,tanggal,latitude,longitude\n"

func loadCSV(t *testing.T, body string) (domain.RecordSet, error) {
	t.Helper()
	return Load("odp.csv", strings.NewReader(body))
}

func requireLoadError(t *testing.T, err error, kind ErrorKind) *LoadError {
	t.Helper()
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %v", err)
	assert.Equal(t, kind, le.Kind)
	return le
}

func TestLoad_CSV(t *testing.T) {
	records, err := loadCSV(t, header+
		"Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,105.26\n"+
		"Way Halim,Jagabaya,Merah,2024,2,29,-5.39,105.27\n")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.Record{
		Row:            2,
		Area:           "Kedaton",
		SubArea:        "Sidodadi",
		Classification: domain.Good,
		InstalledOn:    time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Latitude:       -5.38,
		Longitude:      105.26,
	}, records[0])
	assert.Equal(t, domain.Critical, records[1].Classification)
	assert.Equal(t, 3, records[1].Row)
}

func TestLoad_HeaderOnly(t *testing.T) {
	records, err := loadCSV(t, header)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_HeaderVariants(t *testing.T) {
	body := " Kecamatan ;KELURAHAN;Jenis_ODP;Tahun;Bulan;Tanggal;Latitude;Longitude;catatan\n" +
		"Kedaton;Sidodadi;Kuning;2024.0;3;9.0;-5,38;105,26;extra\n" +
		";;;;;;;;\n"
	records, err := loadCSV(t, "\ufeff"+body)
	require.NoError(t, err)
	require.Len(t, records, 1, "blank rows are skipped")
	assert.Equal(t, domain.Warning, records[0].Classification)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), records[0].InstalledOn)
	assert.InDelta(t, -5.38, records[0].Latitude, 1e-9)
}

func TestLoad_LinesFollowSourceFile(t *testing.T) {
	t.Run("blank line before a bad row", func(t *testing.T) {
		_, err := loadCSV(t, header+"\n"+
			"Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,105.26\n"+
			"Kedaton,Surabaya,Biru,2024,1,5,-5.39,105.27\n")
		le := requireLoadError(t, err, KindInvalidClassification)
		assert.Equal(t, 4, le.Line)
	})

	t.Run("quoted line break", func(t *testing.T) {
		records, err := loadCSV(t, header+
			"Kedaton,\"Sido\ndadi\",Hijau,2024,1,5,-5.38,105.26\n"+
			"\n"+
			"Rajabasa,Eastside,Merah,2024,1,6,-5.35,105.24\n")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 2, records[0].Row)
		assert.Equal(t, 5, records[1].Row)
	})
}

func TestLoad_ExportedDateColumn(t *testing.T) {
	records, err := loadCSV(t, "kecamatan,kelurahan,jenis_odp,tanggal_instalasi,latitude,longitude\n"+
		"Kedaton,Sidodadi,Merah,09/03/2024,-5.38,105.26\n")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), records[0].InstalledOn)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		kind   ErrorKind
		line   int
		column string
	}{
		{
			name:   "missing columns",
			body:   "kecamatan,kelurahan,tahun,bulan,tanggal,longitude\nA,B,2024,1,1,105\n",
			kind:   KindMissingColumn,
			column: "jenis_odp,latitude",
		},
		{
			name:   "missing date columns",
			body:   "kecamatan,kelurahan,jenis_odp,tahun,latitude,longitude\n",
			kind:   KindMissingColumn,
			column: "bulan,tanggal",
		},
		{
			name:   "missing sub area",
			body:   header + "Kedaton,,Hijau,2024,1,5,-5.38,105.26\n",
			kind:   KindMissingValue,
			line:   2,
			column: ColSubArea,
		},
		{
			name:   "unknown classification",
			body:   header + "Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,105.26\nKedaton,Sidodadi,Biru,2024,1,5,-5.38,105.26\n",
			kind:   KindInvalidClassification,
			line:   3,
			column: ColClassification,
		},
		{
			name: "impossible date",
			body: header + "Kedaton,Sidodadi,Hijau,2023,2,29,-5.38,105.26\n",
			kind: KindInvalidDate,
			line: 2,
		},
		{
			name: "fractional day",
			body: header + "Kedaton,Sidodadi,Hijau,2024,1,5.5,-5.38,105.26\n",
			kind: KindInvalidDate,
			line: 2,
		},
		{
			name:   "latitude not numeric",
			body:   header + "Kedaton,Sidodadi,Hijau,2024,1,5,north,105.26\n",
			kind:   KindInvalidCoordinate,
			line:   2,
			column: ColLatitude,
		},
		{
			name:   "longitude out of range",
			body:   header + "Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,205.26\n",
			kind:   KindInvalidCoordinate,
			line:   2,
			column: ColLongitude,
		},
		{
			name:   "missing latitude",
			body:   header + "Kedaton,Sidodadi,Hijau,2024,1,5,,105.26\n",
			kind:   KindMissingValue,
			line:   2,
			column: ColLatitude,
		},
		{
			name: "empty file",
			body: "  \n",
			kind: KindMalformed,
		},
		{
			name: "unterminated quote",
			body: header + "\"Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,105.26\n",
			kind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := loadCSV(t, tt.body)
			assert.Nil(t, records, "no partial dataset on error")
			le := requireLoadError(t, err, tt.kind)
			if tt.line > 0 {
				assert.Equal(t, tt.line, le.Line)
			}
			if tt.column != "" {
				assert.Equal(t, tt.column, le.Column)
			}
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load("odp.json", strings.NewReader("{}"))
	le := requireLoadError(t, err, KindUnsupportedFormat)
	assert.Equal(t, ".json", le.Value)
	assert.Contains(t, le.Error(), "unsupported format")
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Kind: KindInvalidClassification, Line: 4, Column: ColClassification, Value: "Biru"}
	assert.Equal(t, `load: invalid classification "Biru" in column jenis_odp at line 4`, err.Error())
}

func xlsxFixture(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoad_XLSX(t *testing.T) {
	data := xlsxFixture(t,
		[]any{"kecamatan", "kelurahan", "jenis_odp", "tahun", "bulan", "tanggal", "latitude", "longitude"},
		[]any{"Kedaton", "Sidodadi", "Hijau", 2024, 1, 5, -5.38, 105.26},
		[]any{"Rajabasa", "Eastside", "Merah", 2024.0, 12, 31, -5.35, 105.24},
	)

	records, err := Load("ODP.XLSX", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Sidodadi", records[0].SubArea)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), records[1].InstalledOn)
	assert.InDelta(t, 105.24, records[1].Longitude, 1e-9)
}

func TestLoad_XLSXInvalid(t *testing.T) {
	_, err := Load("odp.xlsx", strings.NewReader("not a zip archive"))
	requireLoadError(t, err, KindMalformed)

	data := xlsxFixture(t,
		[]any{"kecamatan", "kelurahan", "jenis_odp", "tahun", "bulan", "tanggal", "latitude", "longitude"},
		[]any{"Kedaton", "Sidodadi", "Ungu", 2024, 1, 5, -5.38, 105.26},
	)
	_, err = Load("odp.xlsx", bytes.NewReader(data))
	le := requireLoadError(t, err, KindInvalidClassification)
	assert.Equal(t, 2, le.Line)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"Kedaton,Sidodadi,Hijau,2024,1,5,-5.38,105.26\n"), 0o600))

	records, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = LoadFile("inventory.txt")
	requireLoadError(t, err, KindUnsupportedFormat)
}
