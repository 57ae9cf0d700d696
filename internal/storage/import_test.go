package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const header = "data_pa_id,judul_pa,platform_aplikasi,kategori,teknologi_yg_digunakan,tahun_ajaran,dosen_pembimbing,mahasiswa\n"

func TestReadCSV(t *testing.T) {
	in := header +
		`1,Aplikasi Kasir,mobile,bisnis,"kotlin,firebase",2021/2022,Dosen A,Mahasiswa A` + "\n" +
		",,,,,,,\n" +
		"2.0,Website Toko,website,,laravel,,,\n"

	records, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Techs != "kotlin,firebase" || records[0].Student != "Mahasiswa A" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].DataPAID != 2 || records[1].RowIdx != 1 {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("judul_pa\nx\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
	_, err = ReadCSV(strings.NewReader(""))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn for empty input, got %v", err)
	}
	_, err = ReadCSV(strings.NewReader("data_pa_id,judul_pa\n1.5,x\n"))
	if err == nil {
		t.Error("expected error for fractional id")
	}
	_, err = ReadCSV(strings.NewReader("data_pa_id,judul_pa\nabc,x\n"))
	if err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestReadRecordsFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pa.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"Data_PA_ID", "Judul_PA", "Platform_Aplikasi", "Teknologi_yg_digunakan", "Catatan"},
		{7, "Game Edukasi", "game/ar/vr", "unity,c#", "ignored"},
		{8, "Smart Farming", "iot", "esp"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	records, err := ReadRecordsFile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].DataPAID != 7 || records[0].Techs != "unity,c#" || records[0].Platform != "game/ar/vr" {
		t.Errorf("record 0 = %+v", records[0])
	}

	if _, err := ReadRecordsFile(path, "Missing"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestReadRecordsFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pa.pkl")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRecordsFile(path, ""); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
