// Package timezone decides where a booking day starts and ends.
//
// Booking dates are calendar days in the zone named by APP_TIMEZONE (IANA names only,
// e.g. "Asia/Jakarta"). The zone is resolved when the package is loaded and can be
// switched with SetLocation.
package timezone
