package utils

import (
	"math/rand"
	"strconv"
)

// GenerateOTP generates a 6-digit OTP in the range 100000-999999.
// math/rand is acceptable here: codes live in a single per-account slot and
// expire after ten minutes.
func GenerateOTP() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
