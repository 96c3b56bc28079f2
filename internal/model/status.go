package model

// DayStatus is the derived per-day attendance status shown on the weekly
// grid. The codes are kept from the mobile app's storage format.
type DayStatus string

const (
	StatusThieuLog     DayStatus = "THIEU_LOG"        // went to work, log incomplete
	StatusDuCong       DayStatus = "DU_CONG"          // full attendance
	StatusChuaCapNhat  DayStatus = "CHUA_CAP_NHAT"    // no logs yet for a past/current day
	StatusNghiPhep     DayStatus = "NGHI_PHEP"        // annual leave (manual)
	StatusNghiBenh     DayStatus = "NGHI_BENH"        // sick leave (manual)
	StatusNghiLe       DayStatus = "NGHI_LE"          // public holiday (manual)
	StatusVangMat      DayStatus = "VANG_MAT"         // absent (manual)
	StatusNghiThuong   DayStatus = "NGHI_THUONG"      // regular day off
	StatusDiMuon       DayStatus = "DI_MUON"          // late arrival (manual)
	StatusVeSom        DayStatus = "VE_SOM"           // early departure (manual)
	StatusDiMuonVeSom  DayStatus = "DI_MUON_VE_SOM"   // both (manual)
	StatusNgayTuongLai DayStatus = "NGAY_TUONG_LAI"   // future date, default
)

// Manual reports whether the status is only ever set by the user. Manual
// statuses are never produced by log derivation and always win over it.
func (s DayStatus) Manual() bool {
	switch s {
	case StatusNghiPhep, StatusNghiBenh, StatusNghiLe, StatusVangMat,
		StatusDiMuon, StatusVeSom, StatusDiMuonVeSom:
		return true
	}
	return false
}

// Valid reports whether s is one of the known status codes.
func (s DayStatus) Valid() bool {
	switch s {
	case StatusThieuLog, StatusDuCong, StatusChuaCapNhat, StatusNghiPhep,
		StatusNghiBenh, StatusNghiLe, StatusVangMat, StatusNghiThuong,
		StatusDiMuon, StatusVeSom, StatusDiMuonVeSom, StatusNgayTuongLai:
		return true
	}
	return false
}

// DailyStatus is the cached per-date status record. It is overwritten
// whenever the day's logs change or the user overrides the status manually;
// the raw log stays authoritative.
type DailyStatus struct {
	Date         string    `json:"date"` // YYYY-MM-DD
	Status       DayStatus `json:"status"`
	CheckInTime  string    `json:"check_in_time,omitempty"`  // "HH:MM" display
	CheckOutTime string    `json:"check_out_time,omitempty"` // "HH:MM" display
	ShiftName    string    `json:"shift_name,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}
