package timeseries

import "time"

// DOYMax is the number of day-of-year buckets. Day-of-year indexing uses a
// 366-day calendar so that the same bucket always means the same point in
// the seasonal cycle across leap and non-leap years.
const DOYMax = 366

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DayOfYear returns the leap-aligned day-of-year in 1..366. In non-leap
// years every day from March 1 onward is shifted by one so that March 1 maps
// to 61 in all years; bucket 60 (February 29) is populated only by leap
// years.
func DayOfYear(t time.Time) int {
	yd := t.YearDay()
	if !isLeapYear(t.Year()) && yd >= 60 {
		yd++
	}
	return yd
}

// WrapDOY maps an arbitrary day-of-year offset back into 1..366, treating
// the day-of-year axis as circular.
func WrapDOY(d int) int {
	d = (d - 1) % DOYMax
	if d < 0 {
		d += DOYMax
	}
	return d + 1
}
