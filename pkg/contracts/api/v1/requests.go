// Package api contains the request contracts of the fielddash HTTP API.
// Version v1 is the current stable API version.
package api

// FiltersRequest updates the filters of a session. Absent fields keep their
// current value; an empty list clears a selection. Dates use YYYY-MM-DD.
type FiltersRequest struct {
	Categories   *[]string `json:"categories,omitempty" validate:"omitempty,dive,required"`
	Wells        *[]string `json:"wells,omitempty" validate:"omitempty,dive,required"`
	Measurements *[]string `json:"measurements,omitempty" validate:"omitempty,dive,required"`
	Columns      *[]string `json:"columns,omitempty" validate:"omitempty,dive,required"`
	Start        *string   `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End          *string   `json:"end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Granularity  *string   `json:"granularity,omitempty" validate:"omitempty,min=1,max=32"`
}

// SessionRequest addresses one session
type SessionRequest struct {
	SessionID string `json:"session_id" param:"id" validate:"required,uuid"`
}

// SheetRequest addresses one sheet of a session by its slug
// (volume-bombeado, volume-produto, fl, hidrometros)
type SheetRequest struct {
	SessionRequest
	Sheet string `json:"sheet" param:"sheet" validate:"required,max=64"`
}

// ExportRequest asks for one sheet in one export format
type ExportRequest struct {
	SheetRequest
	Format string `json:"format" param:"format" validate:"required,oneof=html png xlsx csv chart-data"`
}

// FilterResetRequest resets one filter key, or every key when Key is empty
type FilterResetRequest struct {
	SessionRequest
	Key string `json:"key" param:"key" validate:"omitempty,oneof=categories wells measurements columns date_window granularity"`
}

// UploadedFile describes one multipart part of an upload request
type UploadedFile struct {
	Name string `json:"name" validate:"required,filename,xlsxname"`
	Size int64  `json:"size" validate:"gte=0"`
}
