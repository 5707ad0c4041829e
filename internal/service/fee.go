package service

import "time"

// FineMultiplier is applied to the daily fee for every day a vehicle is
// returned past the agreed return date.
const FineMultiplier = 1.5

// ComputeAmount calculates the amount owed for a closed rental.
//
// Duration is counted in whole days between the rental date and the actual
// return date. A late return pays the full duration plus a fine of
// dailyFee * FineMultiplier per overdue day. An on-time or early return pays
// for at least one day, even when the vehicle comes back the same day.
//
// The function is pure; callers guarantee actualReturnDate is set.
func ComputeAmount(dailyFee float64, rentalDate, returnDate, actualReturnDate time.Time) float64 {
	duration := daysBetween(rentalDate, actualReturnDate)

	if actualReturnDate.After(returnDate) {
		overdueDays := daysBetween(returnDate, actualReturnDate)
		if duration < 0 {
			duration = 0
		}
		return dailyFee*float64(duration) + dailyFee*FineMultiplier*float64(overdueDays)
	}

	if duration < 1 {
		duration = 1
	}
	return dailyFee * float64(duration)
}

// daysBetween returns the number of whole days from a to b, ignoring the
// time-of-day and zone components of both values.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
