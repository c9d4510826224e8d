package models

import (
	"net/http"
	"time"

	"shuttle.campusbus.org/internal/clock"
)

// ResponseVersion is the envelope version of every JSON response.
const ResponseVersion = 2

// ResponseModel is the JSON envelope shared by all API responses.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
	Data        any    `json:"data,omitempty"`
}

// EntryData wraps a single object.
type EntryData struct {
	Entry any `json:"entry"`
}

// ListData wraps a list of objects.
type ListData struct {
	List any `json:"list"`
}

func ResponseCurrentTime(c clock.Clock) int64 {
	if c == nil {
		return time.Now().UnixMilli()
	}
	return c.NowUnixMilli()
}

// NewOKResponse wraps data in a 200 envelope.
func NewOKResponse(data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        http.StatusOK,
		CurrentTime: ResponseCurrentTime(c),
		Text:        "OK",
		Version:     ResponseVersion,
		Data:        data,
	}
}

func NewEntryResponse(entry any, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryData{Entry: entry}, c)
}

func NewListResponse(list any, c clock.Clock) ResponseModel {
	return NewOKResponse(ListData{List: list}, c)
}

// CurrentTimeData is the entry of the current-time endpoint. Minutes is the
// device time of day the live board uses.
type CurrentTimeData struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	Clock        string `json:"clock"`
	Minutes      int    `json:"minutes"`
	Weekday      int    `json:"weekday"`
}

func NewCurrentTimeData(t time.Time) CurrentTimeData {
	return CurrentTimeData{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixMilli(),
		Clock:        t.Format("15:04"),
		Minutes:      t.Hour()*60 + t.Minute(),
		Weekday:      int(t.Weekday()),
	}
}
