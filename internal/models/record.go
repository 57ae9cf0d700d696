package models

// Record is one historical capstone project. RowIdx is the position of the record's
// vector in the nearest-neighbor index.
type Record struct {
	RowIdx       int64  `json:"row_idx" db:"row_idx"`
	DataPAID     int64  `json:"data_pa_id" db:"data_pa_id"`
	Title        string `json:"judul_pa" db:"judul_pa"`
	Platform     string `json:"platform_aplikasi" db:"platform_aplikasi"`
	Category     string `json:"kategori" db:"kategori"`
	Techs        string `json:"teknologi_yg_digunakan" db:"teknologi_yg_digunakan"`
	AcademicYear string `json:"tahun_ajaran" db:"tahun_ajaran"`
	Supervisor   string `json:"dosen_pembimbing" db:"dosen_pembimbing"`
	Student      string `json:"mahasiswa" db:"mahasiswa"`
}
